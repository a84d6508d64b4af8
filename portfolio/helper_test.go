package portfolio

import (
	"testing"

	"github.com/etnz/fterm"
)

func USD(v float64) fterm.Money { return fterm.M(v, "USD") }

// day parses an ISO date or fails the test.
func day(t *testing.T, s string) fterm.Date {
	t.Helper()
	d, err := fterm.ParseDate(s)
	if err != nil {
		t.Fatalf("invalid date %q: %v", s, err)
	}
	return d
}

func deposit(on fterm.Date, amount float64) Transaction {
	return Transaction{Date: on, Type: Deposit, Amount: USD(amount)}
}

func withdraw(on fterm.Date, amount float64) Transaction {
	return Transaction{Date: on, Type: Withdraw, Amount: USD(amount)}
}

func buy(on fterm.Date, ticker string, quantity, amount, fees float64) Transaction {
	return Transaction{Date: on, Type: Buy, Ticker: ticker, Quantity: fterm.Q(quantity), Amount: USD(amount), Fees: USD(fees)}
}

func sell(on fterm.Date, ticker string, quantity, amount, fees float64) Transaction {
	return Transaction{Date: on, Type: Sell, Ticker: ticker, Quantity: fterm.Q(quantity), Amount: USD(amount), Fees: USD(fees)}
}

func dividend(on fterm.Date, ticker string, amount float64) Transaction {
	return Transaction{Date: on, Type: Dividend, Ticker: ticker, Amount: USD(amount)}
}

func fee(on fterm.Date, amount float64) Transaction {
	return Transaction{Date: on, Type: Fee, Amount: USD(amount)}
}

func history(t *testing.T, points map[string]float64) *fterm.History[float64] {
	t.Helper()
	h := new(fterm.History[float64])
	for s, v := range points {
		h.Append(day(t, s), v)
	}
	return h
}

// sampleLedger is a two years history with every transaction type.
func sampleLedger(t *testing.T) (*Ledger, Prices) {
	t.Helper()
	l := NewLedger("USD")
	l.Append(
		deposit(day(t, "2024-01-02"), 10000),
		buy(day(t, "2024-01-03"), "AAPL", 10, 1500, 5),
		buy(day(t, "2024-01-03"), "MSFT", 5, 1800, 5),
		dividend(day(t, "2024-03-15"), "AAPL", 24),
		sell(day(t, "2024-06-03"), "AAPL", 4, 760, 3),
		fee(day(t, "2024-07-01"), 10),
		withdraw(day(t, "2025-02-03"), 500),
		sell(day(t, "2025-03-03"), "AAPL", 6, 1200, 0),
	)
	prices := Prices{
		"AAPL": history(t, map[string]float64{"2024-01-03": 150, "2024-12-31": 180, "2025-01-15": 190}),
		"MSFT": history(t, map[string]float64{"2024-01-03": 360, "2024-12-31": 420, "2025-03-31": 400}),
	}
	return l, prices
}
