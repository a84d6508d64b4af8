package fterm

import (
	"fmt"
	"math"
)

// Percent is a percentage value: 5 means 5%.
type Percent float64

// Ratio converts a ratio (0.05) into a Percent (5%).
func Ratio(r float64) Percent { return Percent(100 * r) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	return math.Abs(float64(p-q)) < precision
}

func (p Percent) String() string {
	if math.IsNaN(float64(p)) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	if math.IsNaN(float64(p)) {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" || res == "-0.00%" {
		return "-"
	}
	return res
}
