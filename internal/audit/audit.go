// Package audit checks the wealth-conservation invariant over a reconstructed
// run: total wealth changes only via explicitly tagged external injection or
// extraction, never spontaneously.
package audit

import (
	"github.com/shopspring/decimal"

	"github.com/simaudit-dev/simaudit/internal/model"
)

// DefaultTolerance absorbs floating-point drift in the source logs without
// masking logic bugs. One cent against transaction sizes in the hundreds.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Auditor compares expected against actual totals at every iteration.
type Auditor struct {
	Tolerance decimal.Decimal
}

// New returns an Auditor with the given tolerance, or DefaultTolerance when
// zero.
func New(tolerance decimal.Decimal) *Auditor {
	if tolerance.IsZero() {
		tolerance = DefaultTolerance
	}
	return &Auditor{Tolerance: tolerance}
}

// Audit walks the snapshot sequence and reports every iteration where the
// conservation invariant fails. The expected total is the incremental
// tracker's prior snapshot total plus the iteration's recorded injections and
// extractions; the actual total comes from an independent resum of agent
// balances built directly from the raw events. Because the two sides derive
// from different passes, a reconstruction bug surfaces the same way a
// simulation bug does. The first snapshot is the baseline. The comparison is
// a strict inequality: a delta of exactly the tolerance passes.
func (a *Auditor) Audit(events []model.Event, snapshots []model.Snapshot) []model.Violation {
	if len(snapshots) == 0 {
		return nil
	}

	resum := resumTotals(events)

	var violations []model.Violation
	for i := 1; i < len(snapshots); i++ {
		snap := snapshots[i]
		expected := snapshots[i-1].TotalWealth.Add(snap.Injection).Sub(snap.Extraction)
		actual := resum[snap.Iteration]
		delta := expected.Sub(actual)
		if delta.Abs().GreaterThan(a.Tolerance) {
			violations = append(violations, model.Violation{
				Iteration: snap.Iteration,
				Expected:  expected,
				Actual:    actual,
				Delta:     delta,
			})
		}
	}
	return violations
}

// resumTotals rebuilds the sum of agent balances per iteration from scratch,
// independent of the reconstructor's incremental tracker. Injections and
// extractions are folded in as expected wealth movement so that a clean run
// resums to the snapshot totals exactly.
func resumTotals(events []model.Event) map[int]decimal.Decimal {
	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	model.SortEvents(ordered)

	totals := make(map[int]decimal.Decimal)
	balances := make(map[string]decimal.Decimal)
	for start := 0; start < len(ordered); {
		iteration := ordered[start].Iteration
		end := start
		for end < len(ordered) && ordered[end].Iteration == iteration {
			end++
		}
		for _, ev := range ordered[start:end] {
			if ev.IsAdjustment() {
				continue
			}
			balances[ev.Agent] = balances[ev.Agent].Add(ev.Amount)
		}
		sum := decimal.Zero
		for _, b := range balances {
			sum = sum.Add(b)
		}
		totals[iteration] = sum
		start = end
	}
	return totals
}
