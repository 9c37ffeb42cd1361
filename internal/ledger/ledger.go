// Package ledger replays an economic event stream into per-agent balance
// timeseries and a per-iteration global snapshot sequence.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/simaudit-dev/simaudit/internal/model"
)

// Warning records a recovered irregularity during reconstruction.
type Warning struct {
	Iteration int    `yaml:"iteration"`
	Message   string `yaml:"message"`
}

// Result holds everything reconstructed from one event stream. All fields
// are derived, read-only artifacts; replaying the same events always yields
// the same Result.
type Result struct {
	Ledgers   map[string]*model.AgentLedger
	Snapshots []model.Snapshot
	Warnings  []Warning
}

// Replay performs a single forward pass over the events, maintaining a
// running balance per agent and a running global total. Out-of-order input
// is flagged and sorted defensively, so physical line order never changes
// the outcome. Adjustment events update only the snapshot's injection and
// extraction totals, never an agent balance.
func Replay(events []model.Event) *Result {
	res := &Result{Ledgers: make(map[string]*model.AgentLedger)}

	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Iteration < ordered[i-1].Iteration {
			res.Warnings = append(res.Warnings, Warning{
				Iteration: ordered[i].Iteration,
				Message: fmt.Sprintf("out-of-order event at %s line %d (iteration %d after %d), resorted",
					ordered[i].Stream, ordered[i].SourceLine, ordered[i].Iteration, ordered[i-1].Iteration),
			})
		}
	}
	model.SortEvents(ordered)

	balances := make(map[string]decimal.Decimal)
	total := decimal.Zero

	for start := 0; start < len(ordered); {
		iteration := ordered[start].Iteration
		end := start
		for end < len(ordered) && ordered[end].Iteration == iteration {
			end++
		}

		injection := decimal.Zero
		extraction := decimal.Zero
		touched := make(map[string]bool)

		for _, ev := range ordered[start:end] {
			if ev.IsAdjustment() {
				if ev.Amount.IsNegative() {
					extraction = extraction.Add(ev.Amount.Neg())
				} else {
					injection = injection.Add(ev.Amount)
				}
				continue
			}
			balances[ev.Agent] = balances[ev.Agent].Add(ev.Amount)
			total = total.Add(ev.Amount)
			touched[ev.Agent] = true
		}

		for agent := range touched {
			l := res.Ledgers[agent]
			if l == nil {
				l = &model.AgentLedger{Agent: agent}
				res.Ledgers[agent] = l
			}
			l.Samples = append(l.Samples, model.BalanceSample{
				Iteration: iteration,
				Balance:   balances[agent],
			})
		}

		res.Snapshots = append(res.Snapshots, model.Snapshot{
			Iteration:   iteration,
			TotalWealth: total,
			Injection:   injection,
			Extraction:  extraction,
		})

		start = end
	}

	return res
}

// BalanceAt returns an agent's balance as of the given iteration, zero for
// unknown agents.
func (r *Result) BalanceAt(agent string, iteration int) decimal.Decimal {
	l := r.Ledgers[agent]
	if l == nil {
		return decimal.Zero
	}
	return l.BalanceAt(iteration)
}

// Agents returns the known agent ids in sorted order.
func (r *Result) Agents() []string {
	agents := make([]string, 0, len(r.Ledgers))
	for a := range r.Ledgers {
		agents = append(agents, a)
	}
	sort.Strings(agents)
	return agents
}
