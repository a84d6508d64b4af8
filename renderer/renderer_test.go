package renderer

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fterm"
	"github.com/etnz/fterm/finviz"
	"github.com/etnz/fterm/fred"
	"github.com/etnz/fterm/indicator"
	"github.com/etnz/fterm/portfolio"
	"github.com/etnz/fterm/tradier"
)

// assertContains checks that every want is in got.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func assertNotContains(t *testing.T, got string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(got, u) {
			t.Errorf("output contains %q:\n%s", u, got)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Number", Number(1234.5), "1,234.50"},
		{"Number/negative", Number(-2), "-2.00"},
		{"Number/zero", Number(0), "0.00"},
		{"Number/NaN", Number(math.NaN()), ""},
		{"SignedNumber", SignedNumber(3), "+3.00"},
		{"SignedNumber/negative", SignedNumber(-3), "-3.00"},
		{"Integer", Integer(1234567), "1,234,567"},
		{"Compact/T", Compact(2.5e12), "2.50T"},
		{"Compact/M", Compact(-7.891e6), "-7.89M"},
		{"Compact/small", Compact(999), "999.00"},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s = %q, want %q", test.name, test.got, test.want)
		}
	}
}

func TestQuote(t *testing.T) {
	q := fterm.Quote{
		Symbol:        "AAPL",
		Name:          "Apple Inc.",
		Currency:      "USD",
		Exchange:      "NasdaqGS",
		Price:         190.5,
		PreviousClose: 188,
		DayHigh:       191,
		DayLow:        187.1,
		Volume:        1234567,
	}
	got := Quote(q)
	assertContains(t, got,
		"# AAPL: Apple Inc.",
		"**190.50 USD** +2.50 (+1.33%) on NasdaqGS",
		"| 188.00 | 187.10 | 191.00 | 1,234,567 |",
	)
	assertNotContains(t, got, "As of", "error")

	q.Time = time.Date(2024, 5, 17, 20, 0, 0, 0, time.UTC)
	assertContains(t, Quote(q), "As of 2024-05-17 20:00 UTC.")
}

func TestSeriesInfo(t *testing.T) {
	s := fred.Series{
		ID:                 "UNRATE",
		Title:              "Unemployment Rate",
		Frequency:          "Monthly",
		Units:              "Percent",
		SeasonalAdjustment: "Seasonally Adjusted",
		ObservationStart:   "1948-01-01",
		ObservationEnd:     "2024-04-01",
		Popularity:         94,
	}
	got := SeriesInfo(s)
	assertContains(t, got, "# UNRATE: Unemployment Rate", "| Monthly | Percent | Seasonally Adjusted | 1948-01-01 | 2024-04-01 |")
	assertNotContains(t, got, "## Notes", "error")

	s.Notes = "The unemployment rate represents the number of unemployed as a percentage of the labor force."
	assertContains(t, SeriesInfo(s), "## Notes", "percentage of the labor force")
}

func TestCandles(t *testing.T) {
	candles := []fterm.Candle{
		{Date: fterm.NewDate(2024, 1, 2), Open: 187.15, High: 188.44, Low: 183.89, Close: 185.64, AdjClose: 184.94, Volume: 82488700},
	}
	got := Candles("AAPL daily candles", candles)
	assertContains(t, got, "# AAPL daily candles", "Adj Close", "2024-01-02", "187.15", "184.94", "82,488,700")
}

func TestIndicator(t *testing.T) {
	dates := []fterm.Date{
		fterm.NewDate(2024, 1, 1),
		fterm.NewDate(2024, 1, 2),
		fterm.NewDate(2024, 1, 3),
	}
	got := Indicator("SMA(2)", dates, 2, Column{"Close", []float64{1, 2, 3}}, Column{"SMA", []float64{math.NaN(), 1.5, 2.5}})
	assertContains(t, got, "# SMA(2)", "Close", "SMA", "2024-01-02", "2024-01-03", "1.50", "2.50")
	assertNotContains(t, got, "2024-01-01", "NaN")
}

func TestStats(t *testing.T) {
	s := indicator.Stats{
		From:        fterm.NewDate(2023, 1, 2),
		To:          fterm.NewDate(2023, 1, 6),
		First:       100,
		Last:        108,
		TotalReturn: 8,
		MaxDrawdown: -10,
		BestPeriod:  indicator.Move{Date: fterm.NewDate(2023, 1, 5), Return: 21.21},
		WorstPeriod: indicator.Move{Date: fterm.NewDate(2023, 1, 4), Return: -10},
	}
	got := Stats("AAPL", s)
	assertContains(t, got, "From 2023-01-02 to 2023-01-06.", "+8.00%", "-10.00%", "Best Period", "+21.21% on 2023-01-05")

	got = Compare("Comparison", []Comparison{{"AAPL", s}, {"MSFT", s}})
	assertContains(t, got, "AAPL", "MSFT", "Max Drawdown")
}

func TestObservations(t *testing.T) {
	h := new(fterm.History[float64])
	h.Append(fterm.NewDate(2024, 1, 1), 3.7)
	h.Append(fterm.NewDate(2024, 2, 1), 3.9)
	h.Append(fterm.NewDate(2024, 3, 1), 3.8)
	got := Observations("UNRATE", h, 2)
	assertContains(t, got, "2024-02-01", "+0.20", "2024-03-01", "-0.10")
	assertNotContains(t, got, "2024-01-01")
}

func TestChain(t *testing.T) {
	options := []tradier.Option{
		{OptionType: "call", Strike: 190, Bid: 1.2, Ask: 1.3, Last: 1.25, Volume: 1500, OpenInterest: 12000, Greeks: &tradier.Greeks{Delta: 0.456, MidIV: 0.25}},
		{OptionType: "put", Strike: 185, Bid: 0.8, Ask: 0.9, Last: 0.85},
	}
	got := Chain("AAPL", fterm.NewDate(2024, 6, 21), options)
	assertContains(t, got, "AAPL options expiring 2024-06-21", "call", "put", "190.00", "12,000", "25.00%", "0.456")

	assertContains(t, Chain("AAPL", fterm.NewDate(2024, 6, 21), nil), "No option matches.")

	dates := []fterm.Date{fterm.NewDate(2024, 6, 21), fterm.NewDate(2024, 7, 19)}
	assertContains(t, Expirations("AAPL", dates, dates[1]), "2024-07-19", "**selected**")
}

func TestScreen(t *testing.T) {
	signal, _ := finviz.LookupSignal("top_gainers")
	rows := []finviz.Row{{Ticker: "XYZ", Company: "XYZ Corp", Sector: "Technology", Change: "12.5%"}}
	assertContains(t, Screen(signal, rows), "Screener: top_gainers", "XYZ Corp", "12.5%")
	assertContains(t, Signals(finviz.Signals), "earnings_after", "stocks with RSI above 70")
}

func usd(v float64) fterm.Money { return fterm.M(v, "USD") }

func TestTransaction(t *testing.T) {
	on := fterm.NewDate(2024, 1, 3)
	tests := []struct {
		tx   portfolio.Transaction
		want string
	}{
		{portfolio.Transaction{Date: on, Type: portfolio.Buy, Ticker: "AAPL", Quantity: fterm.Q(10), Amount: usd(1500), Fees: usd(5)}, "Bought 10 of AAPL for $1,500.00 (fees $5.00)"},
		{portfolio.Transaction{Date: on, Type: portfolio.Sell, Ticker: "AAPL", Quantity: fterm.Q(4), Amount: usd(760)}, "Sold 4 of AAPL for $760.00"},
		{portfolio.Transaction{Date: on, Type: portfolio.Dividend, Ticker: "AAPL", Amount: usd(24)}, "Dividend of $24.00 for AAPL"},
		{portfolio.Transaction{Date: on, Type: portfolio.Deposit, Amount: usd(10000)}, "Deposited $10,000.00"},
		{portfolio.Transaction{Date: on, Type: portfolio.Withdraw, Amount: usd(500)}, "Withdrew $500.00"},
		{portfolio.Transaction{Date: on, Type: portfolio.Fee, Amount: usd(10)}, "Paid a fee of $10.00"},
	}
	for _, test := range tests {
		if got := Transaction(test.tx); got != test.want {
			t.Errorf("Transaction(%v) = %q, want %q", test.tx.Type, got, test.want)
		}
	}
}

func TestReport(t *testing.T) {
	r := fterm.NewRange(fterm.NewDate(2024, 1, 1), fterm.NewDate(2024, 12, 31))
	rows := []portfolio.Row{{
		Label:       "2024",
		Range:       r,
		Start:       usd(0),
		End:         usd(10641),
		Deposits:    usd(10000),
		Withdrawals: usd(0),
		Realized:    usd(152),
		Unrealized:  usd(475),
		Dividends:   usd(24),
		Fees:        usd(10),
		Return:      6.41,
	}}
	got := Report("Annual Report", rows)
	assertContains(t, got, "# Annual Report", "2024", "$10,641.00", "**+$641.00**", "+6.41%")

	got = Performance(rows[0])
	assertContains(t, got, "Performance from 2024-01-01 to 2024-12-31", "+$10,000.00", "-$10.00", "**+$641.00**")
}

func TestHoldings(t *testing.T) {
	d := portfolio.Day{
		Date:        fterm.NewDate(2024, 12, 31),
		Cash:        usd(7000),
		MarketValue: usd(3000),
		Positions: []portfolio.Position{
			{Ticker: "MSFT", Quantity: fterm.Q(5), Cost: usd(1805), Price: usd(600), Value: usd(3000)},
		},
	}
	got := Holdings(d)
	assertContains(t, got, "Holdings on 2024-12-31", "**$10,000.00**", "MSFT", "$361.00", "+$1,195.00", "30.00%")

	d.Positions = nil
	assertContains(t, Holdings(d), "No open position.")
}
