package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Violation records a wealth-conservation failure at one iteration.
// Delta = Expected - Actual, so a positive delta is wealth that went missing
// and a negative delta is wealth created from nowhere.
type Violation struct {
	Iteration int             `yaml:"iteration"`
	Expected  decimal.Decimal `yaml:"expected"`
	Actual    decimal.Decimal `yaml:"actual"`
	Delta     decimal.Decimal `yaml:"delta"`
}

// String renders a one-line human summary.
func (v Violation) String() string {
	return fmt.Sprintf("iteration %d: expected total %s, actual %s (delta %s)",
		v.Iteration, v.Expected.StringFixed(2), v.Actual.StringFixed(2), v.Delta.StringFixed(2))
}
