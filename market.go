package fterm

import "time"

// Candle is one bar of market data.
type Candle struct {
	Date     Date    `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   int64   `json:"volume"`
}

// Quote is a snapshot of the latest trading data of an instrument.
type Quote struct {
	Symbol        string
	Name          string
	Currency      string
	Exchange      string
	Price         float64
	PreviousClose float64
	DayHigh       float64
	DayLow        float64
	Volume        int64
	Time          time.Time
}

// Change returns the absolute change since previous close.
func (q Quote) Change() float64 { return q.Price - q.PreviousClose }

// ChangePercent returns the change since previous close in percent.
func (q Quote) ChangePercent() Percent {
	if q.PreviousClose == 0 {
		return 0
	}
	return Ratio(q.Change() / q.PreviousClose)
}

// Closes returns the adjusted closes of candles, falling back to the close
// when the adjusted close is missing.
func Closes(candles []Candle) []float64 {
	res := make([]float64, len(candles))
	for i, c := range candles {
		res[i] = c.AdjClose
		if res[i] == 0 {
			res[i] = c.Close
		}
	}
	return res
}

// CloseHistory returns closes as a dated History.
func CloseHistory(candles []Candle) *History[float64] {
	h := new(History[float64])
	closes := Closes(candles)
	for i, c := range candles {
		h.Append(c.Date, closes[i])
	}
	return h
}

// Dates returns the date of each candle.
func Dates(candles []Candle) []Date {
	res := make([]Date, len(candles))
	for i, c := range candles {
		res[i] = c.Date
	}
	return res
}
