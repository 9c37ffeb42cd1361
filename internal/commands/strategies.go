package commands

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/simaudit-dev/simaudit/internal/audit"
	"github.com/simaudit-dev/simaudit/internal/localize"
	"github.com/simaudit-dev/simaudit/internal/monthly"
)

// defaultRegistry wires the three invariant strategies into one auditor
// harness.
func defaultRegistry(tolerance decimal.Decimal, expectedKinds []string) *audit.Registry {
	r := audit.NewRegistry()
	r.Register(&totalWealthStrategy{tolerance: tolerance})
	r.Register(&hiddenExpenseStrategy{tolerance: tolerance})
	r.Register(&monthlyStrategy{expectedKinds: expectedKinds})
	return r
}

// totalWealthStrategy reports every conservation violation as-is.
type totalWealthStrategy struct {
	tolerance decimal.Decimal
}

func (s *totalWealthStrategy) Name() string { return "total-wealth" }

func (s *totalWealthStrategy) Check(in audit.Input) []audit.Finding {
	violations := audit.New(s.tolerance).Audit(in.Events, in.Snapshots)
	findings := make([]audit.Finding, 0, len(violations))
	for _, v := range violations {
		findings = append(findings, audit.Finding{
			Strategy:  s.Name(),
			Iteration: v.Iteration,
			Detail:    v.String(),
		})
	}
	return findings
}

// hiddenExpenseStrategy localizes each violation to its first divergent
// iteration and names the top culprit category.
type hiddenExpenseStrategy struct {
	tolerance decimal.Decimal
}

func (s *hiddenExpenseStrategy) Name() string { return "hidden-expense" }

func (s *hiddenExpenseStrategy) Check(in audit.Input) []audit.Finding {
	violations := audit.New(s.tolerance).Audit(in.Events, in.Snapshots)
	var findings []audit.Finding
	for _, v := range violations {
		loc := localize.Localize(v, in.Events, s.tolerance)
		detail := fmt.Sprintf("first divergence at iteration %d (drift %s)", loc.Iteration, loc.Drift.StringFixed(2))
		if len(loc.Ranking) > 0 {
			top := loc.Ranking[0]
			detail = fmt.Sprintf("%s, top culprit category %s (%s across %d event(s))",
				detail, top.Category, top.Total.StringFixed(2), top.Count)
		}
		findings = append(findings, audit.Finding{
			Strategy:  s.Name(),
			Iteration: loc.Iteration,
			Detail:    detail,
		})
	}
	return findings
}

// monthlyStrategy surfaces duplicate and missing recurring charges.
type monthlyStrategy struct {
	expectedKinds []string
}

func (s *monthlyStrategy) Name() string { return "monthly-accounting" }

func (s *monthlyStrategy) Check(in audit.Input) []audit.Finding {
	var findings []audit.Finding
	for _, rep := range monthly.Analyze(in.Events, in.Boundaries, s.expectedKinds) {
		for _, f := range rep.Findings {
			findings = append(findings, audit.Finding{
				Strategy:  s.Name(),
				Iteration: rep.End,
				Detail:    f.Detail,
			})
		}
	}
	return findings
}
