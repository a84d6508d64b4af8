package indicator

import (
	"fmt"
	"math"

	"github.com/etnz/fterm"
)

// Number of periods in a year, used to annualize volatility.
const (
	TradingDays  = 252 // stock market sessions
	CalendarDays = 365 // crypto markets never close
	Weeks        = 52
	Months       = 12
)

// PeriodsPerYear returns the number of candles in a trading year for a candle
// interval (1d, 1wk, 1mo). Unknown intervals count as trading days.
func PeriodsPerYear(interval string) int {
	switch interval {
	case "1wk":
		return Weeks
	case "1mo":
		return Months
	default:
		return TradingDays
	}
}

// Move is the return of one period, dated by the close that ends it.
type Move struct {
	Date   fterm.Date
	Return fterm.Percent
}

// Stats summarizes the performance of a price series.
type Stats struct {
	From, To    fterm.Date
	First, Last float64
	TotalReturn fterm.Percent
	CAGR        fterm.Percent
	Volatility  fterm.Percent // annualized
	MaxDrawdown fterm.Percent // negative or zero

	// BestPeriod and WorstPeriod are the extreme returns between two consecutive candles.
	BestPeriod, WorstPeriod Move
}

// Summarize computes Stats over candles, sorted chronologically.
// periodsPerYear is the number of candles in a year (see PeriodsPerYear).
func Summarize(candles []fterm.Candle, periodsPerYear int) (Stats, error) {
	if periodsPerYear < 1 {
		return Stats{}, fmt.Errorf("invalid number of periods per year %d, must be positive", periodsPerYear)
	}
	if len(candles) < 2 {
		return Stats{}, fmt.Errorf("not enough data: %d candles, need at least 2", len(candles))
	}
	closes := fterm.Closes(candles)
	s := Stats{
		From:  candles[0].Date,
		To:    candles[len(candles)-1].Date,
		First: closes[0],
		Last:  closes[len(closes)-1],
	}
	if s.First == 0 {
		return Stats{}, fmt.Errorf("invalid first close of 0 on %s", s.From)
	}
	s.TotalReturn = fterm.Ratio(s.Last/s.First - 1)
	if years := float64(s.To.Sub(s.From)) / 365.25; years > 0 {
		s.CAGR = fterm.Ratio(math.Pow(s.Last/s.First, 1/years) - 1)
	}

	returns := make([]float64, 0, len(closes)-1)
	s.BestPeriod = Move{Return: fterm.Percent(math.Inf(-1))}
	s.WorstPeriod = Move{Return: fterm.Percent(math.Inf(1))}
	peak := closes[0]
	var drawdown float64
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			r := closes[i]/closes[i-1] - 1
			returns = append(returns, r)
			if p := fterm.Ratio(r); p > s.BestPeriod.Return {
				s.BestPeriod = Move{candles[i].Date, p}
			}
			if p := fterm.Ratio(r); p < s.WorstPeriod.Return {
				s.WorstPeriod = Move{candles[i].Date, p}
			}
		}
		peak = math.Max(peak, closes[i])
		drawdown = math.Min(drawdown, closes[i]/peak-1)
	}
	s.MaxDrawdown = fterm.Ratio(drawdown)
	s.Volatility = fterm.Ratio(stddev(returns) * math.Sqrt(float64(periodsPerYear)))
	return s, nil
}

// stddev is the sample standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
