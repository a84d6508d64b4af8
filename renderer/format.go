package renderer

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Number formats v with thousands separators and two decimals. Values below
// one keep four significant digits, so that small crypto prices stay readable.
// NaN is rendered empty.
func Number(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case v != 0 && math.Abs(v) < 1:
		return printer.Sprintf("%.4g", v)
	default:
		return printer.Sprintf("%.2f", v)
	}
}

// SignedNumber is like Number with an explicit sign.
func SignedNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v > 0 {
		return "+" + Number(v)
	}
	return Number(v)
}

// Integer formats v with thousands separators.
func Integer(v int64) string { return printer.Sprintf("%d", v) }

// Compact formats large amounts with a unit suffix: 1.23T, 4.56B, 7.89M, 12.3K.
func Compact(v float64) string {
	units := []struct {
		size   float64
		suffix string
	}{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	for _, u := range units {
		if math.Abs(v) >= u.size {
			return printer.Sprintf("%.2f%s", v/u.size, u.suffix)
		}
	}
	return Number(v)
}
