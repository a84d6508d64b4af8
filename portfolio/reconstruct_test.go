package portfolio

import (
	"math"
	"strings"
	"testing"

	"github.com/etnz/fterm"
)

func TestReconstruct(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	if got, want := len(days), fterm.NewRange(day(t, "2024-01-02"), day(t, "2025-03-31")).Len(); got != want {
		t.Fatalf("Reconstruct() returned %d days, want %d", got, want)
	}

	last := days[len(days)-1]
	tests := []struct {
		name      string
		got, want fterm.Money
	}{
		{"cash", last.Cash, USD(8161)},
		{"market value", last.MarketValue, USD(2000)},
		{"total", last.Total(), USD(10161)},
		{"realized", last.Realized, USD(452)},
		{"unrealized", last.Unrealized(), USD(195)},
		{"dividends", last.Dividends, USD(24)},
		{"fees", last.Fees, USD(10)},
		{"trading fees", last.TradingFees, USD(13)},
		{"net deposits", last.NetDeposits(), USD(9500)},
		{"gain", last.Gain(), USD(661)},
	}
	for _, tt := range tests {
		if !tt.got.Equal(tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if _, open := last.Position("AAPL"); open {
		t.Errorf("AAPL position should be closed")
	}
}

func TestReconstruct_SellAfterPartialSale(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	d, _ := At(days, day(t, "2024-06-03"))
	// 757 proceeds - 1505*4/10 cost
	if !d.Realized.Equal(USD(155)) {
		t.Errorf("Realized = %v, want %v", d.Realized, USD(155))
	}
	p, ok := d.Position("AAPL")
	if !ok {
		t.Fatalf("AAPL position should be open")
	}
	if !p.Cost.Equal(USD(903)) || !p.Quantity.Equal(fterm.Q(6)) {
		t.Errorf("AAPL = %v shares for %v, want 6 shares for %v", p.Quantity, p.Cost, USD(903))
	}
}

func TestReconstruct_FIFO(t *testing.T) {
	l := NewLedger("USD")
	l.Append(
		deposit(day(t, "2024-01-01"), 1000),
		buy(day(t, "2024-01-02"), "X", 10, 100, 0),
		buy(day(t, "2024-01-03"), "X", 10, 200, 0),
		sell(day(t, "2024-01-04"), "X", 15, 300, 0),
	)
	tests := []struct {
		method    CostBasisMethod
		realized  fterm.Money
		costBasis fterm.Money
	}{
		{FIFO, USD(100), USD(100)},      // 100 + 200*5/10 sold
		{AverageCost, USD(75), USD(75)}, // 300*15/20 sold
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			days, err := Reconstruct(l, nil, day(t, "2024-01-04"), tt.method)
			if err != nil {
				t.Fatalf("Reconstruct() unexpected error: %v", err)
			}
			last := days[len(days)-1]
			if !last.Realized.Equal(tt.realized) {
				t.Errorf("Realized = %v, want %v", last.Realized, tt.realized)
			}
			if !last.CostBasis.Equal(tt.costBasis) {
				t.Errorf("CostBasis = %v, want %v", last.CostBasis, tt.costBasis)
			}
		})
	}
}

func TestReconstruct_LastTradePriceFallback(t *testing.T) {
	l := NewLedger("USD")
	l.Append(
		deposit(day(t, "2024-01-01"), 1000),
		buy(day(t, "2024-01-02"), "PRIVATE", 4, 400, 0),
	)
	days, err := Reconstruct(l, Prices{}, day(t, "2024-01-10"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	last := days[len(days)-1]
	if !last.MarketValue.Equal(USD(400)) {
		t.Errorf("MarketValue = %v, want %v", last.MarketValue, USD(400))
	}
}

func TestReconstruct_NegativeCash(t *testing.T) {
	l := NewLedger("USD")
	l.Append(buy(day(t, "2024-01-02"), "AAPL", 1, 150, 1))
	days, err := Reconstruct(l, nil, day(t, "2024-01-02"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	if !days[0].Cash.Equal(USD(-151)) {
		t.Errorf("Cash = %v, want %v", days[0].Cash, USD(-151))
	}
}

// TestReconstruct_GainIdentity checks that for any two days the change of total
// value net of deposits is explained by realized, unrealized, dividends and fees.
func TestReconstruct_GainIdentity(t *testing.T) {
	l, prices := sampleLedger(t)
	for _, method := range []CostBasisMethod{AverageCost, FIFO} {
		days, err := Reconstruct(l, prices, day(t, "2025-03-31"), method)
		if err != nil {
			t.Fatalf("Reconstruct() unexpected error: %v", err)
		}
		for a := 0; a < len(days); a += 17 {
			for b := a; b < len(days); b += 23 {
				da, db := days[a], days[b]
				lhs := db.Total().Sub(da.Total()).Sub(db.NetDeposits().Sub(da.NetDeposits()))
				rhs := db.Realized.Sub(da.Realized).
					Add(db.Unrealized().Sub(da.Unrealized())).
					Add(db.Dividends.Sub(da.Dividends)).
					Sub(db.Fees.Sub(da.Fees))
				if !lhs.Equal(rhs) {
					t.Fatalf("%v: between %s and %s: %v != %v", method, da.Date, db.Date, lhs, rhs)
				}
			}
		}
	}
}

func TestReconstruct_Errors(t *testing.T) {
	l, prices := sampleLedger(t)
	if _, err := Reconstruct(l, prices, day(t, "2024-12-31"), AverageCost); err == nil {
		t.Errorf("Reconstruct() with end before the last transaction expected an error")
	}
	if _, err := Reconstruct(NewLedger("USD"), nil, day(t, "2024-12-31"), AverageCost); err == nil {
		t.Errorf("Reconstruct() of an empty ledger expected an error")
	}

	invalid := NewLedger("USD")
	invalid.Append(sell(day(t, "2024-01-02"), "AAPL", 1, 150, 0))
	_, err := Reconstruct(invalid, nil, day(t, "2024-01-02"), AverageCost)
	if err == nil || !strings.Contains(err.Error(), "only 0 held") {
		t.Errorf("Reconstruct() of an invalid ledger error = %v, want the validation error", err)
	}
}

func TestReport(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	rows, err := Report(days, fterm.Range{}, fterm.Yearly)
	if err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Report() returned %d rows, want 2", len(rows))
	}

	y2024, y2025 := rows[0], rows[1]
	if y2024.Label != "2024" || y2025.Label != "2025" {
		t.Errorf("labels = %q, %q, want 2024, 2025", y2024.Label, y2025.Label)
	}
	if !y2024.Start.IsZero() || !y2024.End.Equal(USD(10641)) {
		t.Errorf("2024 start, end = %v, %v, want 0, %v", y2024.Start, y2024.End, USD(10641))
	}
	if !y2024.Gain().Equal(USD(641)) || !y2024.Unrealized.Equal(USD(472)) {
		t.Errorf("2024 gain = %v, unrealized = %v, want %v, %v", y2024.Gain(), y2024.Unrealized, USD(641), USD(472))
	}
	if !y2024.Return.Equal(6.41) {
		t.Errorf("2024 return = %v, want 6.41%%", y2024.Return)
	}
	if !y2025.Withdrawals.Equal(USD(500)) || !y2025.Gain().Equal(USD(20)) {
		t.Errorf("2025 withdrawals = %v, gain = %v, want %v, %v", y2025.Withdrawals, y2025.Gain(), USD(500), USD(20))
	}
	// withdrawal on day 33 of 90 weighs 57/90
	if math.Abs(float64(y2025.Return)-0.193717) > 1e-4 {
		t.Errorf("2025 return = %v, want 0.19%%", y2025.Return)
	}

	for _, r := range rows {
		if got := r.End.Sub(r.Start).Sub(r.NetDeposits()); !got.Equal(r.Gain()) {
			t.Errorf("%s: end - start - net deposits = %v, want gain %v", r.Label, got, r.Gain())
		}
	}
}

func TestReport_Quarterly(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	rows, err := Report(days, fterm.NewRange(day(t, "2024-04-01"), day(t, "2024-12-31")), fterm.Quarterly)
	if err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	var labels []string
	for _, r := range rows {
		labels = append(labels, r.Label)
	}
	if got := strings.Join(labels, ","); got != "2024-Q2,2024-Q3,2024-Q4" {
		t.Errorf("labels = %s, want 2024-Q2,2024-Q3,2024-Q4", got)
	}
	if !rows[0].Realized.Equal(USD(155)) || !rows[1].Fees.Equal(USD(10)) {
		t.Errorf("Q2 realized = %v, Q3 fees = %v", rows[0].Realized, rows[1].Fees)
	}

	if _, err := Report(days, fterm.NewRange(day(t, "2030-01-01"), day(t, "2030-12-31")), fterm.Yearly); err == nil {
		t.Errorf("Report() out of history expected an error")
	}
}

func TestHoldings(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	d, ok := At(days, day(t, "2024-06-30"))
	if !ok {
		t.Fatalf("At() found no day")
	}
	h := Holdings(d)
	if len(h) != 2 || h[0].Ticker != "AAPL" || h[1].Ticker != "MSFT" {
		t.Fatalf("Holdings() = %v, want AAPL and MSFT", h)
	}
	if !h[0].Value.Equal(USD(900)) || !h[0].AverageCost().Equal(USD(150.5)) {
		t.Errorf("AAPL value = %v, average cost = %v, want %v, %v", h[0].Value, h[0].AverageCost(), USD(900), USD(150.5))
	}
	if math.Abs(float64(h[0].Weight)-8.848687) > 1e-4 {
		t.Errorf("AAPL weight = %v, want 8.85%%", h[0].Weight)
	}
	if !h[1].Unrealized().Equal(USD(-5)) {
		t.Errorf("MSFT unrealized = %v, want %v", h[1].Unrealized(), USD(-5))
	}
}

func TestPerformance(t *testing.T) {
	l, prices := sampleLedger(t)
	days, err := Reconstruct(l, prices, day(t, "2025-03-31"), AverageCost)
	if err != nil {
		t.Fatalf("Reconstruct() unexpected error: %v", err)
	}
	p, err := Performance(days)
	if err != nil {
		t.Fatalf("Performance() unexpected error: %v", err)
	}
	if !p.End.Equal(USD(10161)) || !p.NetDeposits().Equal(USD(9500)) || !p.Gain().Equal(USD(661)) {
		t.Errorf("Performance() = end %v, net deposits %v, gain %v", p.End, p.NetDeposits(), p.Gain())
	}
}

func TestParseCostBasisMethod(t *testing.T) {
	for in, want := range map[string]CostBasisMethod{"average": AverageCost, "AVG": AverageCost, " FIFO ": FIFO} {
		got, err := ParseCostBasisMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseCostBasisMethod(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseCostBasisMethod("lifo"); err == nil {
		t.Error("ParseCostBasisMethod(lifo) succeeded, want an error")
	}
}
