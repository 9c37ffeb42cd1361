package commands

import (
	"fmt"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simaudit-dev/simaudit/internal/audit"
	"github.com/simaudit-dev/simaudit/internal/config"
	"github.com/simaudit-dev/simaudit/internal/ingest"
	"github.com/simaudit-dev/simaudit/internal/ledger"
	"github.com/simaudit-dev/simaudit/internal/model"
	"github.com/simaudit-dev/simaudit/internal/report"
)

// auditOptions are the flags shared by the audit subcommands.
type auditOptions struct {
	configPath string
	tolerance  string
	period     int
	output     string
}

func (o *auditOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "path to simaudit.yaml (defaults apply when omitted)")
	cmd.Flags().StringVar(&o.tolerance, "tolerance", "", "conservation tolerance, overrides config")
	cmd.Flags().IntVar(&o.period, "period", 0, "month length in iterations, overrides config")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the structured YAML report to this path")
}

// load resolves config file and flag overrides into a Config plus parsed
// tolerance.
func (o *auditOptions) load() (*config.Config, decimal.Decimal, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, decimal.Decimal{}, err
		}
		cfg = loaded
	}
	if o.tolerance != "" {
		cfg.Tolerance = o.tolerance
	}
	if o.period > 0 {
		cfg.Calendar.IterationsPerDay = o.period
		cfg.Calendar.DaysPerMonth = 1
	}

	tol, err := cfg.ToleranceDecimal()
	if err != nil {
		return nil, decimal.Decimal{}, err
	}
	return cfg, tol, nil
}

// ingestFiles reads every log path as its own stream and merges the events
// by (iteration, source line).
func ingestFiles(paths []string) ([]model.Event, []ingest.Stats, error) {
	var (
		batches [][]model.Event
		stats   []ingest.Stats
	)
	for _, path := range paths {
		events, st, err := ingest.ReadFile(path, filepath.Base(path))
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("ingested stream",
			zap.String("path", path),
			zap.Int("events", st.Events),
			zap.Int("warnings", st.Warnings))
		batches = append(batches, events)
		stats = append(stats, st)
	}
	return ingest.Merge(batches...), stats, nil
}

// reconstruct replays events and audits conservation; the shared front half
// of every audit command.
func reconstruct(events []model.Event, tol decimal.Decimal) (*ledger.Result, []model.Violation) {
	res := ledger.Replay(events)
	violations := audit.New(tol).Audit(events, res.Snapshots)
	logger.Debug("reconstructed run",
		zap.Int("iterations", len(res.Snapshots)),
		zap.Int("agents", len(res.Ledgers)),
		zap.Int("violations", len(violations)))
	return res, violations
}

// newReport builds the common report envelope.
func newReport(source string, stats []ingest.Stats, res *ledger.Result) *report.Report {
	return &report.Report{
		Source:     source,
		Streams:    stats,
		Iterations: len(res.Snapshots),
		Agents:     len(res.Ledgers),
		Warnings:   res.Warnings,
	}
}

// finish writes the optional YAML report, prints the summary, and converts
// findings into a non-zero exit.
func finish(cmd *cobra.Command, rep *report.Report, output string) error {
	if output != "" {
		if err := rep.WriteFile(output); err != nil {
			return err
		}
	}
	rep.Summary(cmd.OutOrStdout())
	if n := rep.Findings(); n > 0 {
		return fmt.Errorf("audit found %d finding(s)", n)
	}
	return nil
}
