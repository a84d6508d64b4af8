// Package indicator computes technical indicators over a series of closes.
//
// Every function returns a slice aligned with its input: values that cannot be
// computed yet (warm-up) are NaN. The maths are TA-Lib's.
package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
)

func check(values []float64, length int) error {
	if length < 1 {
		return fmt.Errorf("invalid length %d, must be positive", length)
	}
	if len(values) < length {
		return fmt.Errorf("not enough data: %d values for a length of %d", len(values), length)
	}
	return nil
}

// warmup replaces the first n values, that TA-Lib leaves at zero, by NaN.
func warmup(values []float64, n int) []float64 {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}

// SMA returns the simple moving average over length values.
func SMA(values []float64, length int) ([]float64, error) {
	if err := check(values, length); err != nil {
		return nil, err
	}
	return warmup(talib.Sma(values, length), length-1), nil
}

// EMA returns the exponential moving average over length values, seeded with the SMA of the first length values.
func EMA(values []float64, length int) ([]float64, error) {
	if err := check(values, length); err != nil {
		return nil, err
	}
	return warmup(talib.Ema(values, length), length-1), nil
}

// RSI returns the relative strength index using Wilder's smoothing.
// A series that has not moved yet has an RSI of 50.
func RSI(values []float64, length int) ([]float64, error) {
	if length < 2 {
		return nil, fmt.Errorf("invalid length %d, must be at least 2", length)
	}
	if err := check(values, length+1); err != nil {
		return nil, err
	}
	res := warmup(talib.Rsi(values, length), length)
	// TA-Lib reports 0 while there was neither gain nor loss
	for i := 1; i < len(values) && values[i] == values[0]; i++ {
		if i >= length {
			res[i] = 50
		}
	}
	return res, nil
}

// MACD returns the MACD line (fast EMA - slow EMA), its signal EMA and the histogram.
// The signal starts once the line is defined, so it is not dragged by the warm-up.
func MACD(values []float64, fast, slow, signal int) (line, sig, hist []float64, err error) {
	if fast >= slow {
		return nil, nil, nil, fmt.Errorf("fast length %d must be lower than slow length %d", fast, slow)
	}
	if err := check(values, slow); err != nil {
		return nil, nil, nil, err
	}
	if signal < 1 {
		return nil, nil, nil, fmt.Errorf("invalid signal length %d, must be positive", signal)
	}
	f, s := talib.Ema(values, fast), talib.Ema(values, slow)
	line = make([]float64, len(values))
	for i := range values {
		line[i] = f[i] - s[i]
	}
	warmup(line, slow-1)

	sig = warmup(make([]float64, len(values)), len(values))
	if defined := line[slow-1:]; len(defined) >= signal {
		copy(sig[slow-1:], warmup(talib.Ema(defined, signal), signal-1))
	}
	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i] // NaN while sig warms up
	}
	return line, sig, hist, nil
}

// Bollinger returns the middle (SMA), upper and lower bands at k population standard deviations.
func Bollinger(values []float64, length int, k float64) (mid, upper, lower []float64, err error) {
	if err := check(values, length); err != nil {
		return nil, nil, nil, err
	}
	upper, mid, lower = talib.BBands(values, length, k, k, talib.SMA)
	n := length - 1
	return warmup(mid, n), warmup(upper, n), warmup(lower, n), nil
}
