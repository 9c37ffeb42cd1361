package model

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Category classifies economic events.
type Category string

const (
	CategoryIncome     Category = "income"
	CategoryExpense    Category = "expense"
	CategoryTransfer   Category = "transfer"
	CategoryTax        Category = "tax"
	CategorySubsidy    Category = "subsidy"
	CategoryAdjustment Category = "adjustment"
)

// Event is one parsed economic transaction from a simulation debug log.
// Positive amounts increase the agent's balance, negative amounts decrease it.
// Transfers appear as a debit/credit pair sharing a TxID. Adjustment events
// represent money creation or destruction external to the agent economy and
// carry no meaningful agent attribution.
type Event struct {
	Iteration  int             `yaml:"iteration"`
	Agent      string          `yaml:"agent"`
	Category   Category        `yaml:"category"`
	Kind       string          `yaml:"kind"` // raw log token before category normalization (e.g. "rent", "wage")
	Amount     decimal.Decimal `yaml:"amount"`
	TxID       string          `yaml:"tx_id,omitempty"`
	SourceLine int             `yaml:"source_line"`
	Stream     string          `yaml:"stream"` // originating log stream (console, error, combined)
}

// IsAdjustment reports whether the event is external money creation/destruction.
func (e Event) IsAdjustment() bool {
	return e.Category == CategoryAdjustment
}

// SortEvents orders events by (iteration, source line), iteration taking
// priority. The sort is stable so equal keys keep file order.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Iteration != events[j].Iteration {
			return events[i].Iteration < events[j].Iteration
		}
		return events[i].SourceLine < events[j].SourceLine
	})
}
