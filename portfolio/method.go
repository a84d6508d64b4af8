package portfolio

import (
	"fmt"
	"strings"
)

// CostBasisMethod selects which cost is released when shares are sold.
type CostBasisMethod int

const (
	// AverageCost releases the average cost of the shares held.
	AverageCost CostBasisMethod = iota
	// FIFO releases the cost of the oldest lots first.
	FIFO
)

// Methods lists the cost basis methods, by name.
var Methods = []CostBasisMethod{AverageCost, FIFO}

func (m CostBasisMethod) String() string {
	switch m {
	case AverageCost:
		return "average"
	case FIFO:
		return "fifo"
	}
	return fmt.Sprintf("CostBasisMethod(%d)", int(m))
}

// ParseCostBasisMethod parses a method name, case insensitive. "avg" is
// accepted for "average".
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "avg" {
		return AverageCost, nil
	}
	for _, m := range Methods {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown cost basis method %q, want average or fifo", s)
}
