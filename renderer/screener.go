package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fterm/finviz"
	md "github.com/nao1215/markdown"
)

// Signals renders the screener presets.
func Signals(signals []finviz.Signal) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Screener Presets")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Signal", "Description"},
		Rows:      [][]string{},
	}
	for _, s := range signals {
		table.Rows = append(table.Rows, []string{s.Name, s.Description})
	}
	doc.Table(table)
	return doc.String()
}

// Screen renders the result of a screener.
func Screen(signal finviz.Signal, rows []finviz.Row) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Screener: %s", signal.Name))
	doc.PlainText(signal.Description)
	if len(rows) == 0 {
		doc.PlainText("No stock matches.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Ticker", "Company", "Sector", "Industry", "Country", "Market Cap", "P/E", "Price", "Change", "Volume"},
		Rows:   [][]string{},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Ticker, r.Company, r.Sector, r.Industry, r.Country,
			r.MarketCap, r.PE, r.Price, r.Change, r.Volume,
		})
	}
	doc.Table(table)
	return doc.String()
}
