package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/tradier"
	md "github.com/nao1215/markdown"
)

// Expirations renders the expiration dates of an underlying, marking the selected one.
func Expirations(symbol string, dates []fterm.Date, selected fterm.Date) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Expirations for %s", symbol))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignLeft},
		Header:    []string{"#", "Expiration", "Days", ""},
		Rows:      [][]string{},
	}
	today := fterm.Today()
	for i, d := range dates {
		mark := ""
		if d == selected {
			mark = md.Bold("selected")
		}
		table.Rows = append(table.Rows, []string{strconv.Itoa(i), d.String(), strconv.Itoa(d.Sub(today)), mark})
	}
	doc.Table(table)
	return doc.String()
}

// Chain renders an option chain.
func Chain(symbol string, expiration fterm.Date, options []tradier.Option) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("%s options expiring %s", symbol, expiration))
	if len(options) == 0 {
		doc.PlainText("No option matches.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Type", "Strike", "Bid", "Ask", "Last", "Volume", "Open Int.", "IV", "Delta"},
		Rows:   [][]string{},
	}
	for _, o := range options {
		iv, delta := "", ""
		if o.Greeks != nil {
			iv = fterm.Ratio(o.Greeks.MidIV).String()
			delta = fmt.Sprintf("%.3f", o.Greeks.Delta)
		}
		table.Rows = append(table.Rows, []string{
			o.OptionType,
			Number(o.Strike),
			Number(o.Bid),
			Number(o.Ask),
			Number(o.Last),
			Integer(o.Volume),
			Integer(o.OpenInterest),
			iv,
			delta,
		})
	}
	doc.Table(table)
	return doc.String()
}
