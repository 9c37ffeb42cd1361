// Package report assembles and serializes the structured result of one audit
// invocation. Output is deterministic: the same input logs always produce a
// byte-identical report, so no timestamps or generated ids appear here.
package report

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simaudit-dev/simaudit/internal/audit"
	"github.com/simaudit-dev/simaudit/internal/crashdiag"
	"github.com/simaudit-dev/simaudit/internal/ingest"
	"github.com/simaudit-dev/simaudit/internal/ledger"
	"github.com/simaudit-dev/simaudit/internal/localize"
	"github.com/simaudit-dev/simaudit/internal/model"
	"github.com/simaudit-dev/simaudit/internal/monthly"
)

// ViolationReport pairs a conservation violation with its localization.
type ViolationReport struct {
	Violation    model.Violation        `yaml:"violation"`
	Localization *localize.Localization `yaml:"localization,omitempty"`
}

// Report is the structured result of one audit invocation.
type Report struct {
	Source     string                   `yaml:"source"`
	Streams    []ingest.Stats           `yaml:"streams"`
	Iterations int                      `yaml:"iterations"`
	Agents     int                      `yaml:"agents"`
	Warnings   []ledger.Warning         `yaml:"reconstruction_warnings,omitempty"`
	Violations []ViolationReport        `yaml:"violations,omitempty"`
	Monthly    []monthly.BoundaryReport `yaml:"monthly,omitempty"`
	Crash      *crashdiag.Correlation   `yaml:"crash,omitempty"`
	Strategies []audit.Finding          `yaml:"strategy_findings,omitempty"`
}

// Findings counts everything that should make the run exit non-zero.
func (r *Report) Findings() int {
	n := len(r.Violations) + len(r.Strategies)
	for _, b := range r.Monthly {
		n += len(b.Findings)
	}
	return n
}

// WriteYAML serializes the report.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

// WriteFile serializes the report to path.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	if err := r.WriteYAML(f); err != nil {
		return err
	}
	return f.Close()
}

// WriteAll serializes multiple reports as one YAML stream, one document per
// report, in the given order.
func WriteAll(w io.Writer, reports []*Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding report for %s: %w", r.Source, err)
		}
	}
	return enc.Close()
}

// Summary writes the human-readable result. A clean run is a single quiet
// line; each violation prints its iteration, delta, and top culprit category.
func (r *Report) Summary(w io.Writer) {
	warnings := 0
	for _, s := range r.Streams {
		warnings += s.Warnings
	}

	if r.Findings() == 0 {
		fmt.Fprintf(w, "%s: clean run, %d iterations, %d agents, %d parse warning(s)\n",
			r.Source, r.Iterations, r.Agents, warnings)
	} else {
		fmt.Fprintf(w, "%s: %d finding(s) across %d iterations\n", r.Source, r.Findings(), r.Iterations)
		for _, vr := range r.Violations {
			fmt.Fprintf(w, "  conservation: %s\n", vr.Violation)
			if vr.Localization != nil && len(vr.Localization.Ranking) > 0 {
				top := vr.Localization.Ranking[0]
				fmt.Fprintf(w, "    first divergence at iteration %d, top culprit category %s (%s across %d event(s))\n",
					vr.Localization.Iteration, top.Category, top.Total.StringFixed(2), top.Count)
			}
		}
		for _, b := range r.Monthly {
			for _, f := range b.Findings {
				fmt.Fprintf(w, "  monthly: %s\n", f.Detail)
			}
		}
		for _, f := range r.Strategies {
			fmt.Fprintf(w, "  %s: %s\n", f.Strategy, f.Detail)
		}
		if warnings > 0 {
			fmt.Fprintf(w, "  %d line(s) skipped with parse warnings\n", warnings)
		}
	}

	if r.Crash != nil {
		if r.Crash.NoViolation {
			fmt.Fprintf(w, "  crash at iteration %d: no correlated violation found\n", r.Crash.Marker.Iteration)
		} else {
			fmt.Fprintf(w, "  crash at iteration %d follows violation at iteration %d\n",
				r.Crash.Marker.Iteration, r.Crash.Violation.Iteration)
		}
	}
}
