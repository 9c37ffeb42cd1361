package model

import "github.com/shopspring/decimal"

// BalanceSample is one point in an agent's balance timeseries.
type BalanceSample struct {
	Iteration int
	Balance   decimal.Decimal
}

// AgentLedger is the reconstructed balance history for a single agent.
// Samples are ordered by iteration, one per iteration in which the agent
// had at least one event.
type AgentLedger struct {
	Agent   string
	Samples []BalanceSample
}

// BalanceAt returns the agent's balance as of the given iteration (the last
// sample at or before it). Zero before the agent's first event.
func (l *AgentLedger) BalanceAt(iteration int) decimal.Decimal {
	balance := decimal.Zero
	for _, s := range l.Samples {
		if s.Iteration > iteration {
			break
		}
		balance = s.Balance
	}
	return balance
}

// Snapshot is the global economic state after replaying one iteration.
// TotalWealth is the sum of all agent balances; Injection and Extraction
// accumulate that iteration's adjustment events.
type Snapshot struct {
	Iteration   int             `yaml:"iteration"`
	TotalWealth decimal.Decimal `yaml:"total_wealth"`
	Injection   decimal.Decimal `yaml:"injection"`
	Extraction  decimal.Decimal `yaml:"extraction"`
}

// MonthBoundary is a periodic settlement checkpoint covering an inclusive
// iteration range.
type MonthBoundary struct {
	Month int
	Start int
	End   int
}

// Contains reports whether the iteration falls inside the boundary.
func (b MonthBoundary) Contains(iteration int) bool {
	return iteration >= b.Start && iteration <= b.End
}
