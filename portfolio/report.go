package portfolio

import (
	"fmt"
	"math"

	"github.com/etnz/fterm"
)

// Row is the activity of the portfolio over one period.
type Row struct {
	Label       string // period identifier, e.g. "2024" or "2024-Q3"
	Range       fterm.Range
	Start, End  fterm.Money // total value at the end of the previous day, and at the end of the range
	Deposits    fterm.Money
	Withdrawals fterm.Money
	Realized    fterm.Money
	Unrealized  fterm.Money // change of unrealized gain over the range
	Dividends   fterm.Money
	Fees        fterm.Money
	Return      fterm.Percent // Modified Dietz, NaN when undefined
}

// Gain returns the gain of the period: realized, change of unrealized and dividends, minus fees.
func (r Row) Gain() fterm.Money {
	return r.Realized.Add(r.Unrealized).Add(r.Dividends).Sub(r.Fees)
}

// NetDeposits returns deposits minus withdrawals over the period.
func (r Row) NetDeposits() fterm.Money { return r.Deposits.Sub(r.Withdrawals) }

// index returns the position of on in days, which are contiguous.
func index(days []Day, on fterm.Date) int { return on.Sub(days[0].Date) }

// At returns the state of the portfolio at the end of day on.
//
// Days after the last reconstructed day get the last state.
func At(days []Day, on fterm.Date) (Day, bool) {
	if len(days) == 0 || on.Before(days[0].Date) {
		return Day{}, false
	}
	return days[min(index(days, on), len(days)-1)], true
}

// before returns the state at the end of the day before on, the empty portfolio before inception.
func before(days []Day, on fterm.Date) Day {
	if i := index(days, on); i > 0 {
		return days[i-1]
	}
	zero := fterm.M(0, days[0].Cash.Currency())
	return Day{
		Date: on.Add(-1), Cash: zero, MarketValue: zero, CostBasis: zero,
		Realized: zero, Dividends: zero, Fees: zero, TradingFees: zero,
		Deposits: zero, Withdrawals: zero,
	}
}

// Between computes the activity over r, which must be within the reconstructed days.
func Between(days []Day, r fterm.Range) Row {
	start, end := before(days, r.From), days[index(days, r.To)]
	row := Row{
		Label:       r.Identifier(),
		Range:       r,
		Start:       start.Total(),
		End:         end.Total(),
		Deposits:    end.Deposits.Sub(start.Deposits),
		Withdrawals: end.Withdrawals.Sub(start.Withdrawals),
		Realized:    end.Realized.Sub(start.Realized),
		Unrealized:  end.Unrealized().Sub(start.Unrealized()),
		Dividends:   end.Dividends.Sub(start.Dividends),
		Fees:        end.Fees.Sub(start.Fees),
	}
	row.Return = modifiedDietz(days, r, row.Start.AsFloat(), row.Gain().AsFloat())
	return row
}

// modifiedDietz returns gain over the start value plus the time weighted net
// deposits. A flow on day k of a T days range weighs (T-k)/T: a deposit on the
// first day counts fully.
func modifiedDietz(days []Day, r fterm.Range, start, gain float64) fterm.Percent {
	total := float64(r.Len())
	prev := before(days, r.From).NetDeposits()
	weighted := 0.0
	k := 0
	for day := range r.Days() {
		net := days[index(days, day)].NetDeposits()
		if flow := net.Sub(prev); !flow.IsZero() {
			weighted += flow.AsFloat() * (total - float64(k)) / total
		}
		prev = net
		k++
	}
	base := start + weighted
	if base <= 0 {
		return fterm.Percent(math.NaN())
	}
	return fterm.Ratio(gain / base)
}

// clip restricts r to the reconstructed days. A zero bound means unbounded.
func clip(days []Day, r fterm.Range) (fterm.Range, error) {
	if len(days) == 0 {
		return fterm.Range{}, fmt.Errorf("no portfolio history")
	}
	first, last := days[0].Date, days[len(days)-1].Date
	if r.From.IsZero() || r.From.Before(first) {
		r.From = first
	}
	if r.To.IsZero() || r.To.After(last) {
		r.To = last
	}
	if r.From.After(r.To) {
		return fterm.Range{}, fmt.Errorf("range does not intersect the portfolio history %s", fterm.NewRange(first, last))
	}
	return r, nil
}

// Report returns one row per period within r (clipped to the reconstructed days).
func Report(days []Day, r fterm.Range, period fterm.Period) ([]Row, error) {
	r, err := clip(days, r)
	if err != nil {
		return nil, err
	}
	var rows []Row
	for pr := range r.Periods(period) {
		row := Between(days, pr)
		// clipped periods are still labeled by their calendar period.
		row.Label = period.Range(pr.From).Identifier()
		rows = append(rows, row)
	}
	return rows, nil
}

// Performance returns the activity from inception to the last day.
func Performance(days []Day) (Row, error) {
	r, err := clip(days, fterm.Range{})
	if err != nil {
		return Row{}, err
	}
	row := Between(days, r)
	row.Label = "inception"
	return row, nil
}

// Holding is an open position with its weight in the portfolio.
type Holding struct {
	Position
	Weight fterm.Percent // of the total value, cash included
}

// Holdings returns the open positions of d.
func Holdings(d Day) []Holding {
	total := d.Total()
	res := make([]Holding, 0, len(d.Positions))
	for _, p := range d.Positions {
		res = append(res, Holding{Position: p, Weight: fterm.Ratio(p.Value.Ratio(total))})
	}
	return res
}
