package portfolio

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/fterm"
)

// Prices holds the closing prices of each ticker.
type Prices map[string]*fterm.History[float64]

// Close returns the latest close of ticker on or before day.
func (p Prices) Close(ticker string, day fterm.Date) (float64, bool) {
	h, ok := p[ticker]
	if !ok || h == nil {
		return 0, false
	}
	return h.ValueAsOf(day)
}

// Position is the holding of one security at the end of a day.
type Position struct {
	Ticker   string
	Quantity fterm.Quantity
	Cost     fterm.Money // cost basis of the shares held, buy fees included
	Price    fterm.Money // unit price used for valuation
	Value    fterm.Money // market value
}

// AverageCost returns the cost basis per share.
func (p Position) AverageCost() fterm.Money {
	if p.Quantity.IsZero() {
		return fterm.Money{}
	}
	return p.Cost.Div(p.Quantity)
}

// Unrealized returns the unrealized gain of the position.
func (p Position) Unrealized() fterm.Money { return p.Value.Sub(p.Cost) }

// Day is the state of the portfolio at the end of a day.
//
// Flows (Realized, Dividends, Fees, TradingFees, Deposits, Withdrawals) are
// cumulative since the first transaction.
type Day struct {
	Date        fterm.Date
	Cash        fterm.Money
	MarketValue fterm.Money
	CostBasis   fterm.Money
	Realized    fterm.Money
	Dividends   fterm.Money
	Fees        fterm.Money // standalone fees only
	TradingFees fterm.Money // buy and sell fees, already accounted for in CostBasis and Realized
	Deposits    fterm.Money
	Withdrawals fterm.Money
	Positions   []Position // sorted by ticker, open positions only
}

// Total returns the total value: cash plus market value.
func (d Day) Total() fterm.Money { return d.Cash.Add(d.MarketValue) }

// Unrealized returns the unrealized gain of open positions.
func (d Day) Unrealized() fterm.Money { return d.MarketValue.Sub(d.CostBasis) }

// NetDeposits returns deposits minus withdrawals.
func (d Day) NetDeposits() fterm.Money { return d.Deposits.Sub(d.Withdrawals) }

// Gain returns the cumulative gain: realized, unrealized and dividends, minus fees.
//
// It always equals Total() - NetDeposits().
func (d Day) Gain() fterm.Money {
	return d.Realized.Add(d.Unrealized()).Add(d.Dividends).Sub(d.Fees)
}

// Position returns the position in ticker, if open.
func (d Day) Position(ticker string) (Position, bool) {
	i := slices.IndexFunc(d.Positions, func(p Position) bool { return p.Ticker == ticker })
	if i < 0 {
		return Position{}, false
	}
	return d.Positions[i], true
}

// holding is the running state of one security during reconstruction.
type holding struct {
	quantity  fterm.Quantity
	cost      fterm.Money
	lots      lots
	lastTrade fterm.Money // unit price of the latest trade, fallback for valuation
}

// Reconstruct walks every day from the first transaction to end, applies that
// day's transactions in ledger order, and records the state at the end of each day.
//
// Positions are valued at the latest close on or before the day, or at the
// last trade price when no close is known.
func Reconstruct(l *Ledger, prices Prices, end fterm.Date, method CostBasisMethod) ([]Day, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	r, ok := l.Range()
	if !ok {
		return nil, fmt.Errorf("cannot reconstruct an empty ledger")
	}
	if end.Before(r.To) {
		return nil, fmt.Errorf("end date %s is before the last transaction on %s", end, r.To)
	}

	zero := fterm.M(0, l.currency)
	state := Day{
		Cash: zero, MarketValue: zero, CostBasis: zero,
		Realized: zero, Dividends: zero, Fees: zero, TradingFees: zero,
		Deposits: zero, Withdrawals: zero,
	}
	holdings := map[string]*holding{}
	days := make([]Day, 0, fterm.NewRange(r.From, end).Len())

	next := 0 // next transaction to apply
	for day := range fterm.NewRange(r.From, end).Days() {
		for ; next < len(l.transactions) && !l.transactions[next].Date.After(day); next++ {
			tx := l.transactions[next]
			h := holdings[tx.Ticker]
			if h == nil && tx.Type.IsTrade() {
				h = &holding{quantity: fterm.Q(0), cost: zero}
				holdings[tx.Ticker] = h
			}
			switch tx.Type {
			case Deposit:
				state.Cash = state.Cash.Add(tx.Amount)
				state.Deposits = state.Deposits.Add(tx.Amount)
			case Withdraw:
				state.Cash = state.Cash.Sub(tx.Amount)
				state.Withdrawals = state.Withdrawals.Add(tx.Amount)
			case Buy:
				cost := tx.Amount.Add(tx.Fees)
				state.Cash = state.Cash.Sub(cost)
				state.TradingFees = state.TradingFees.Add(tx.Fees)
				h.quantity = h.quantity.Add(tx.Quantity)
				h.cost = h.cost.Add(cost)
				h.lots = append(h.lots, lot{Date: tx.Date, Quantity: tx.Quantity, Cost: cost})
				h.lastTrade = tx.Price()
			case Sell:
				proceeds := tx.Amount.Sub(tx.Fees)
				state.Cash = state.Cash.Add(proceeds)
				state.TradingFees = state.TradingFees.Add(tx.Fees)
				sold := h.sell(tx.Quantity, method)
				state.Realized = state.Realized.Add(proceeds.Sub(sold))
				h.lastTrade = tx.Price()
			case Dividend:
				state.Cash = state.Cash.Add(tx.Amount)
				state.Dividends = state.Dividends.Add(tx.Amount)
			case Fee:
				state.Cash = state.Cash.Sub(tx.Amount)
				state.Fees = state.Fees.Add(tx.Amount)
			}
		}

		state.Date = day
		state.MarketValue, state.CostBasis = zero, zero
		state.Positions = nil
		for ticker, h := range holdings {
			if h.quantity.IsZero() {
				continue
			}
			price := h.lastTrade
			if c, ok := prices.Close(ticker, day); ok {
				price = fterm.M(c, l.currency)
			}
			p := Position{
				Ticker:   ticker,
				Quantity: h.quantity,
				Cost:     h.cost,
				Price:    price,
				Value:    price.Mul(h.quantity),
			}
			state.Positions = append(state.Positions, p)
			state.MarketValue = state.MarketValue.Add(p.Value)
			state.CostBasis = state.CostBasis.Add(p.Cost)
		}
		slices.SortFunc(state.Positions, func(a, b Position) int { return strings.Compare(a.Ticker, b.Ticker) })
		days = append(days, state)
	}
	return days, nil
}

// sell removes quantity from the holding and returns the cost basis of the sold shares.
func (h *holding) sell(quantity fterm.Quantity, method CostBasisMethod) fterm.Money {
	var cost fterm.Money
	switch {
	case quantity.Equal(h.quantity):
		// closing the position releases the whole cost basis, whatever the method.
		cost = h.cost
		h.lots = nil
	case method == FIFO:
		h.lots, cost = h.lots.sell(quantity)
	default:
		cost = h.cost.Mul(quantity).Div(h.quantity)
		h.lots, _ = h.lots.sell(quantity)
	}
	h.quantity = h.quantity.Sub(quantity)
	h.cost = h.cost.Sub(cost)
	return cost
}
