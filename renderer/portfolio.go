package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fterm/portfolio"
	md "github.com/nao1215/markdown"
)

// Transaction renders a transaction as a sentence.
func Transaction(tx portfolio.Transaction) string {
	var s string
	switch tx.Type {
	case portfolio.Buy:
		s = fmt.Sprintf("Bought %s of %s for %s", tx.Quantity, tx.Ticker, tx.Amount)
	case portfolio.Sell:
		s = fmt.Sprintf("Sold %s of %s for %s", tx.Quantity, tx.Ticker, tx.Amount)
	case portfolio.Dividend:
		s = fmt.Sprintf("Dividend of %s for %s", tx.Amount, tx.Ticker)
	case portfolio.Deposit:
		s = fmt.Sprintf("Deposited %s", tx.Amount)
	case portfolio.Withdraw:
		s = fmt.Sprintf("Withdrew %s", tx.Amount)
	case portfolio.Fee:
		s = fmt.Sprintf("Paid a fee of %s", tx.Amount)
	default:
		s = string(tx.Type)
	}
	if !tx.Fees.IsZero() {
		s += fmt.Sprintf(" (fees %s)", tx.Fees)
	}
	return s
}

// Transactions renders a list of transactions.
func Transactions(title string, txs []portfolio.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	if len(txs) == 0 {
		doc.PlainText("No transaction.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Date", "Transaction", "Memo"},
		Rows:      [][]string{},
	}
	for _, tx := range txs {
		table.Rows = append(table.Rows, []string{tx.Date.String(), Transaction(tx), tx.Memo})
	}
	doc.Table(table)
	return doc.String()
}

// Holdings renders the positions and cash of the portfolio at the end of a day.
func Holdings(d portfolio.Day) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Holdings on %s", d.Date))
	doc.PlainText(fmt.Sprintf("Total value: %s (cash %s, securities %s)", md.Bold(d.Total().String()), d.Cash, d.MarketValue))

	holdings := portfolio.Holdings(d)
	if len(holdings) == 0 {
		doc.PlainText("No open position.")
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
		},
		Header: []string{"Ticker", "Quantity", "Average Cost", "Price", "Market Value", "Unrealized", "Weight"},
		Rows:   [][]string{},
	}
	for _, h := range holdings {
		table.Rows = append(table.Rows, []string{
			h.Ticker,
			h.Quantity.String(),
			h.AverageCost().String(),
			h.Price.String(),
			h.Value.String(),
			h.Unrealized().SignedString(),
			h.Weight.String(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Report renders the annual (or periodic) report.
func Report(title string, rows []portfolio.Row) string {
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
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Period", "Start", "Deposits", "Withdrawals", "Realized", "Unrealized", "Dividends", "Fees", "Gain", "End", "Return"},
		Rows:   [][]string{},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Label,
			r.Start.String(),
			r.Deposits.String(),
			r.Withdrawals.String(),
			r.Realized.SignedString(),
			r.Unrealized.SignedString(),
			r.Dividends.String(),
			r.Fees.String(),
			md.Bold(r.Gain().SignedString()),
			r.End.String(),
			r.Return.SignedString(),
		})
	}
	doc.Table(table)
	return doc.String()
}

// Performance renders the performance of the portfolio since inception.
func Performance(r portfolio.Row) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Performance from %s to %s", r.Range.From, r.Range.To))
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"", "Amount"},
		Rows: [][]string{
			{"Total Value", md.Bold(r.End.String())},
			{"Net Deposits", r.NetDeposits().SignedString()},
			{"Realized Gains", r.Realized.SignedString()},
			{"Unrealized Gains", r.Unrealized.SignedString()},
			{"Dividends", r.Dividends.SignedString()},
			{"Fees", r.Fees.Neg().SignedString()},
			{md.Bold("Total Gain"), md.Bold(r.Gain().SignedString())},
			{"Return", r.Return.SignedString()},
		},
	})
	return doc.String()
}
