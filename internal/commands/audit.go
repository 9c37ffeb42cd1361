package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simaudit-dev/simaudit/internal/audit"
	"github.com/simaudit-dev/simaudit/internal/config"
	"github.com/simaudit-dev/simaudit/internal/ledger"
	"github.com/simaudit-dev/simaudit/internal/monthly"
	"github.com/simaudit-dev/simaudit/internal/report"
)

func newAuditCommand() *cobra.Command {
	var opts auditOptions
	var strategies []string

	cmd := &cobra.Command{
		Use:   "audit <log-or-directory>",
		Short: "Run every invariant strategy over a log or a directory of logs",
		Long: `Runs the configured invariant strategies (total-wealth, hidden-expense,
monthly-accounting) over one log file, or over every *.log file in a
directory. Each file's audit is independent, so a directory is processed
concurrently and only the final reports are merged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, tolerance, err := opts.load()
			if err != nil {
				return err
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("stat %s: %w", args[0], err)
			}

			paths := []string{args[0]}
			if info.IsDir() {
				paths, err = filepath.Glob(filepath.Join(args[0], "*.log"))
				if err != nil {
					return fmt.Errorf("listing %s: %w", args[0], err)
				}
				if len(paths) == 0 {
					return fmt.Errorf("no *.log files in %s", args[0])
				}
				sort.Strings(paths)
			}

			reports := make([]*report.Report, len(paths))
			var g errgroup.Group
			for i, path := range paths {
				i, path := i, path
				g.Go(func() error {
					rep, err := auditOne(path, cfg, tolerance, strategies)
					if err != nil {
						return err
					}
					reports[i] = rep
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if opts.output != "" {
				f, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("creating report file: %w", err)
				}
				err = report.WriteAll(f, reports)
				f.Close()
				if err != nil {
					return err
				}
			}

			findings := 0
			for _, rep := range reports {
				rep.Summary(cmd.OutOrStdout())
				findings += rep.Findings()
			}
			if findings > 0 {
				return fmt.Errorf("audit found %d finding(s)", findings)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringSliceVar(&strategies, "strategy", nil,
		"invariant strategies to run (default: all registered)")
	return cmd
}

// auditOne runs the selected strategies over a single log file.
func auditOne(path string, cfg *config.Config, tolerance decimal.Decimal, selected []string) (*report.Report, error) {
	events, stats, err := ingestFiles([]string{path})
	if err != nil {
		return nil, err
	}

	res := ledger.Replay(events)
	rep := newReport(path, stats, res)

	maxIteration := 0
	if n := len(res.Snapshots); n > 0 {
		maxIteration = res.Snapshots[n-1].Iteration
	}
	in := audit.Input{
		Events:     events,
		Snapshots:  res.Snapshots,
		Boundaries: monthly.Boundaries(maxIteration, cfg.Period()),
	}

	registry := defaultRegistry(tolerance, cfg.Monthly.ExpectedKinds)
	names := selected
	if len(names) == 0 {
		names = registry.Names()
	}
	for _, name := range names {
		s := registry.Get(name)
		if s == nil {
			return nil, fmt.Errorf("unknown strategy %q (have %s)", name, strings.Join(registry.Names(), ", "))
		}
		findings := s.Check(in)
		logger.Debug("strategy complete",
			zap.String("path", path),
			zap.String("strategy", s.Name()),
			zap.Int("findings", len(findings)))
		rep.Strategies = append(rep.Strategies, findings...)
	}

	return rep, nil
}
