package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/eodhd"
	"github.com/etnz/fterm/indicator"
	md "github.com/nao1215/markdown"
)

// Candles renders candles as a table, most recent last.
func Candles(title string, candles []fterm.Candle) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"},
		Rows:   [][]string{},
	}
	for _, c := range candles {
		table.Rows = append(table.Rows, []string{
			c.Date.String(),
			Number(c.Open),
			Number(c.High),
			Number(c.Low),
			Number(c.Close),
			Number(c.AdjClose),
			Integer(c.Volume),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Stats renders the performance summary of a price series.
func Stats(title string, s indicator.Stats) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	doc.PlainText(fmt.Sprintf("From %s to %s.", s.From, s.To))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Statistic", "Value"},
		Rows: [][]string{
			{"First Close", Number(s.First)},
			{"Last Close", Number(s.Last)},
			{md.Bold("Total Return"), md.Bold(s.TotalReturn.SignedString())},
			{"CAGR", s.CAGR.SignedString()},
			{"Volatility (annualized)", s.Volatility.String()},
			{"Max Drawdown", s.MaxDrawdown.SignedString()},
			{"Best Period", fmt.Sprintf("%s on %s", s.BestPeriod.Return.SignedString(), s.BestPeriod.Date)},
			{"Worst Period", fmt.Sprintf("%s on %s", s.WorstPeriod.Return.SignedString(), s.WorstPeriod.Date)},
		},
	})
	return doc.String()
}

// Comparison is the summary of one instrument in a side by side comparison.
type Comparison struct {
	Ticker string
	Stats  indicator.Stats
}

// Compare renders several summaries side by side.
func Compare(title string, rows []Comparison) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Ticker", "From", "Total Return", "CAGR", "Volatility", "Max Drawdown"},
		Rows:   [][]string{},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Ticker,
			r.Stats.From.String(),
			r.Stats.TotalReturn.SignedString(),
			r.Stats.CAGR.SignedString(),
			r.Stats.Volatility.String(),
			r.Stats.MaxDrawdown.SignedString(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Column is a named series of values aligned on dates.
type Column struct {
	Name   string
	Values []float64
}

// Indicator renders the last n rows of dated columns. Warm-up values (NaN)
// are rendered empty.
func Indicator(title string, dates []fterm.Date, n int, columns ...Column) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft},
		Header:    []string{"Date"},
		Rows:      [][]string{},
	}
	for _, c := range columns {
		table.Alignment = append(table.Alignment, md.AlignRight)
		table.Header = append(table.Header, c.Name)
	}
	start := 0
	if n > 0 && len(dates) > n {
		start = len(dates) - n
	}
	for i := start; i < len(dates); i++ {
		row := []string{dates[i].String()}
		for _, c := range columns {
			cell := ""
			if i < len(c.Values) {
				cell = Number(c.Values[i])
			}
			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
	return doc.String()
}

// Instruments renders search results.
func Instruments(title string, results []eodhd.SearchResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	if len(results) == 0 {
		doc.PlainText("No match.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{"Ticker", "Name", "Type", "Exchange", "Currency", "ISIN", "Previous Close"},
		Rows:   [][]string{},
	}
	for _, r := range results {
		table.Rows = append(table.Rows, []string{
			r.Ticker(),
			r.Name,
			r.Type,
			r.Exchange,
			r.Currency,
			r.ISIN,
			Number(r.PreviousClose),
		})
	}
	doc.Table(table)
	return doc.String()
}
