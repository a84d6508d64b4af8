package portfolio

import "github.com/etnz/fterm"

// lot represents a single purchase of a security, used for FIFO cost basis.
type lot struct {
	Date     fterm.Date
	Quantity fterm.Quantity
	Cost     fterm.Money // total cost of the lot, fees included
}

type lots []lot

// sell removes quantityToSell from the oldest lots first, and returns the
// remaining lots with the cost of the sold shares.
func (l lots) sell(quantityToSell fterm.Quantity) (remaining lots, cost fterm.Money) {
	for _, current := range l {
		if quantityToSell.IsZero() {
			remaining = append(remaining, current)
			continue
		}
		if current.Quantity.GreaterThan(quantityToSell) {
			// partial sale from this lot
			sold := current.Cost.Mul(quantityToSell).Div(current.Quantity)
			cost = cost.Add(sold)
			remaining = append(remaining, lot{
				Date:     current.Date,
				Quantity: current.Quantity.Sub(quantityToSell),
				Cost:     current.Cost.Sub(sold),
			})
			quantityToSell = fterm.Quantity{}
			continue
		}
		// full sale of this lot
		cost = cost.Add(current.Cost)
		quantityToSell = quantityToSell.Sub(current.Quantity)
	}
	return remaining, cost
}
