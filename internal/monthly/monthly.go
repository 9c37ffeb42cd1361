// Package monthly checks that recurring month-end charges (rent, tax,
// subsidy) fire exactly once per settlement boundary. A restart or retry
// re-applying a monthly charge is the regression class this targets.
package monthly

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/simaudit-dev/simaudit/internal/model"
)

// DefaultExpectedKinds are the recurring charge kinds checked per boundary.
var DefaultExpectedKinds = []string{"rent", "subsidy", "tax"}

// AgentCount records how often one agent saw one kind inside a boundary.
type AgentCount struct {
	Agent string `yaml:"agent"`
	Count int    `yaml:"count"`
}

// KindReport summarizes one expected kind inside one boundary.
type KindReport struct {
	Kind   string       `yaml:"kind"`
	Count  int          `yaml:"count"`
	Agents []AgentCount `yaml:"agents,omitempty"`
}

// Finding is a monthly-accounting failure.
type Finding struct {
	Type   string `yaml:"type"` // DuplicateApplication or MissingApplication
	Month  int    `yaml:"month"`
	Kind   string `yaml:"kind"`
	Agent  string `yaml:"agent,omitempty"`
	Count  int    `yaml:"count,omitempty"`
	Detail string `yaml:"detail"`
}

const (
	// FindingDuplicate marks a charge applied more than once to one agent
	// within a single boundary.
	FindingDuplicate = "DuplicateApplication"
	// FindingMissing marks an expected charge absent from a boundary.
	FindingMissing = "MissingApplication"
)

// BoundaryReport is the per-boundary accounting table.
type BoundaryReport struct {
	Month      int             `yaml:"month"`
	Start      int             `yaml:"start"`
	End        int             `yaml:"end"`
	WealthDrop decimal.Decimal `yaml:"wealth_drop"` // net agent wealth change across the boundary's final iteration
	Kinds      []KindReport    `yaml:"kinds"`
	Findings   []Finding       `yaml:"findings,omitempty"`
}

// Boundaries infers month boundaries from a periodicity constant, covering
// iterations 0..maxIteration. The calendar origin is iteration 0 (Day0H0), so
// month 1 opens there and runs one iteration longer than the rest; with the
// simulation's 24 iterations per day and 30-day months the period is 720,
// putting settlements at 720, 1440, and so on.
func Boundaries(maxIteration, period int) []model.MonthBoundary {
	if period <= 0 || maxIteration <= 0 {
		return nil
	}
	var bounds []model.MonthBoundary
	for month, start := 1, 0; start <= maxIteration; month, start = month+1, month*period+1 {
		end := month * period
		if end > maxIteration {
			end = maxIteration
		}
		bounds = append(bounds, model.MonthBoundary{Month: month, Start: start, End: end})
	}
	return bounds
}

// Analyze produces one report per boundary, with DuplicateApplication and
// MissingApplication findings for the expected kinds.
func Analyze(events []model.Event, boundaries []model.MonthBoundary, expectedKinds []string) []BoundaryReport {
	if len(expectedKinds) == 0 {
		expectedKinds = DefaultExpectedKinds
	}
	expected := make(map[string]bool, len(expectedKinds))
	for _, k := range expectedKinds {
		expected[k] = true
	}

	reports := make([]BoundaryReport, 0, len(boundaries))
	for _, b := range boundaries {
		rep := BoundaryReport{Month: b.Month, Start: b.Start, End: b.End, WealthDrop: decimal.Zero}

		// kind -> agent -> count, restricted to this boundary.
		counts := make(map[string]map[string]int)
		for _, ev := range events {
			if !b.Contains(ev.Iteration) {
				continue
			}
			if ev.Iteration == b.End && !ev.IsAdjustment() {
				rep.WealthDrop = rep.WealthDrop.Add(ev.Amount)
			}
			if !expected[ev.Kind] {
				continue
			}
			if counts[ev.Kind] == nil {
				counts[ev.Kind] = make(map[string]int)
			}
			counts[ev.Kind][ev.Agent]++
		}

		for _, kind := range expectedKinds {
			agents := counts[kind]
			kr := KindReport{Kind: kind}
			for agent, n := range agents {
				kr.Count += n
				kr.Agents = append(kr.Agents, AgentCount{Agent: agent, Count: n})
			}
			sort.Slice(kr.Agents, func(i, j int) bool { return kr.Agents[i].Agent < kr.Agents[j].Agent })

			if kr.Count == 0 {
				rep.Findings = append(rep.Findings, Finding{
					Type:   FindingMissing,
					Month:  b.Month,
					Kind:   kind,
					Detail: fmt.Sprintf("expected %s charge never fired in month %d (iterations %d-%d)", kind, b.Month, b.Start, b.End),
				})
			}
			for _, ac := range kr.Agents {
				if ac.Count > 1 {
					rep.Findings = append(rep.Findings, Finding{
						Type:   FindingDuplicate,
						Month:  b.Month,
						Kind:   kind,
						Agent:  ac.Agent,
						Count:  ac.Count,
						Detail: fmt.Sprintf("%s applied %d times to %s in month %d", kind, ac.Count, ac.Agent, b.Month),
					})
				}
			}
			rep.Kinds = append(rep.Kinds, kr)
		}

		reports = append(reports, rep)
	}
	return reports
}
