package renderer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/coingecko"
	md "github.com/nao1215/markdown"
)

// Coins renders a list of coins, as returned by search or trending.
func Coins(title string, coins []coingecko.Coin) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	if len(coins) == 0 {
		doc.PlainText("No match.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"ID", "Symbol", "Name", "Rank"},
		Rows:      [][]string{},
	}
	for _, c := range coins {
		rank := ""
		if c.MarketCapRank > 0 {
			rank = strconv.Itoa(c.MarketCapRank)
		}
		table.Rows = append(table.Rows, []string{c.ID, strings.ToUpper(c.Symbol), c.Name, rank})
	}
	doc.Table(table)
	return doc.String()
}

// Prices renders simple prices with their 24h change.
func Prices(prices []coingecko.Price) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Prices")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"Coin", "Price", "Currency", "24h"},
		Rows:      [][]string{},
	}
	for _, p := range prices {
		table.Rows = append(table.Rows, []string{p.ID, Number(p.Price), strings.ToUpper(p.VS), p.Change24h.SignedString()})
	}
	doc.Table(table)
	return doc.String()
}

// Markets renders the top coins by market capitalization.
func Markets(vs string, markets []coingecko.Market) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Top Coins in " + strings.ToUpper(vs))
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"#", "Symbol", "Name", "Price", "24h", "Market Cap", "Volume"},
		Rows:   [][]string{},
	}
	for _, m := range markets {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(m.MarketCapRank),
			strings.ToUpper(m.Symbol),
			m.Name,
			Number(m.CurrentPrice),
			fterm.Percent(m.PriceChangePercentage24h).SignedString(),
			Compact(m.MarketCap),
			Compact(m.TotalVolume),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Chart renders daily points of a coin, most recent last.
func Chart(title string, points []coingecko.Point) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Price", "Market Cap", "Volume"},
		Rows:      [][]string{},
	}
	for _, p := range points {
		table.Rows = append(table.Rows, []string{p.Date.String(), Number(p.Price), Compact(p.MarketCap), Compact(p.Volume)})
	}
	doc.Table(table)
	return doc.String()
}
