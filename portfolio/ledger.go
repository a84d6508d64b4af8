// Package portfolio reconstructs the value of an investment portfolio from its
// transaction history, and aggregates it into periodic reports.
package portfolio

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/etnz/fterm"
)

// Ledger is a single currency, chronological list of transactions.
type Ledger struct {
	currency     string
	transactions []Transaction
}

// NewLedger returns an empty ledger in currency.
func NewLedger(currency string) *Ledger {
	return &Ledger{currency: currency}
}

// Currency returns the currency of the ledger.
func (l *Ledger) Currency() string { return l.currency }

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append appends transactions to this ledger and maintains the chronological order of transactions.
//
// Amounts without a currency take the ledger's currency.
func (l *Ledger) Append(txs ...Transaction) {
	for _, tx := range txs {
		if tx.Amount.Currency() == "" {
			tx.Amount = fterm.M(tx.Amount.Decimal(), l.currency)
		}
		if tx.Fees.Currency() == "" {
			tx.Fees = fterm.M(tx.Fees.Decimal(), l.currency)
		}
		l.transactions = append(l.transactions, tx)
	}
	l.stableSort()
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].Date.Before(l.transactions[j].Date)
	})
}

// Transactions returns an iterator that yields each transaction in chronological order.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Tail returns the last n transactions (all of them if n <= 0).
func (l *Ledger) Tail(n int) []Transaction {
	if n <= 0 || n > len(l.transactions) {
		n = len(l.transactions)
	}
	return slices.Clone(l.transactions[len(l.transactions)-n:])
}

// Tickers returns every ticker traded in the ledger, sorted.
func (l *Ledger) Tickers() []string {
	var res []string
	for _, tx := range l.transactions {
		if tx.Ticker != "" && !slices.Contains(res, tx.Ticker) {
			res = append(res, tx.Ticker)
		}
	}
	slices.Sort(res)
	return res
}

// Range returns the range from the oldest to the newest transaction.
func (l *Ledger) Range() (fterm.Range, bool) {
	if len(l.transactions) == 0 {
		return fterm.Range{}, false
	}
	return fterm.NewRange(l.transactions[0].Date, l.transactions[len(l.transactions)-1].Date), true
}

// Validate returns every error found in the ledger, joined.
//
// Besides the checks of each transaction, it replays quantities to detect
// sales of more shares than held and dividends on securities never held.
func (l *Ledger) Validate() error {
	var errs []error
	held := map[string]fterm.Quantity{}
	everHeld := map[string]bool{}
	for i, tx := range l.transactions {
		if err := tx.check(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tx.ref(i), err))
			continue
		}
		if cur := tx.Amount.Currency(); cur != l.currency {
			errs = append(errs, fmt.Errorf("%s: currency %q differs from the ledger's %q", tx.ref(i), cur, l.currency))
			continue
		}
		switch tx.Type {
		case Buy:
			held[tx.Ticker] = held[tx.Ticker].Add(tx.Quantity)
			everHeld[tx.Ticker] = true
		case Sell:
			if tx.Quantity.GreaterThan(held[tx.Ticker]) {
				errs = append(errs, fmt.Errorf("%s: selling %s %s but only %s held", tx.ref(i), tx.Quantity, tx.Ticker, held[tx.Ticker]))
				continue
			}
			held[tx.Ticker] = held[tx.Ticker].Sub(tx.Quantity)
		case Dividend:
			if !everHeld[tx.Ticker] {
				errs = append(errs, fmt.Errorf("%s: dividend on %s which was never held", tx.ref(i), tx.Ticker))
			}
		}
	}
	return errors.Join(errs...)
}
