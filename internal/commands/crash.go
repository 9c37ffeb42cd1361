package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simaudit-dev/simaudit/internal/crashdiag"
	"github.com/simaudit-dev/simaudit/internal/ingest"
	"github.com/simaudit-dev/simaudit/internal/report"
)

func newCrashCommand() *cobra.Command {
	var opts auditOptions
	var errorLog string
	var lastN int

	cmd := &cobra.Command{
		Use:   "crash <log> [log...]",
		Short: "Correlate a crash marker with the preceding economic state",
		Long: `Scans the error stream for a terminal marker (panic, FATAL, traceback) and
pairs it with the global snapshot immediately before it, the trailing events,
and the nearest unresolved conservation violation. Reports "no correlated
violation found" when the crash has no preceding anomaly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, tolerance, err := opts.load()
			if err != nil {
				return err
			}
			if lastN <= 0 {
				lastN = cfg.Crash.LastEvents
			}

			events, stats, err := ingestFiles(args)
			if err != nil {
				return err
			}

			crashSource := errorLog
			if crashSource == "" {
				crashSource = args[len(args)-1]
			}
			f, err := os.Open(crashSource)
			if err != nil {
				return fmt.Errorf("opening error stream %s: %w", crashSource, err)
			}
			marker, found := ingest.FindCrash(f)
			f.Close()
			if !found {
				return fmt.Errorf("no crash marker found in %s", crashSource)
			}

			res, violations := reconstruct(events, tolerance)
			rep := newReport(args[0], stats, res)
			for _, v := range violations {
				rep.Violations = append(rep.Violations, report.ViolationReport{Violation: v})
			}

			corr := crashdiag.Correlate(marker, events, res.Snapshots, violations, lastN)
			rep.Crash = &corr

			return finish(cmd, rep, opts.output)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&errorLog, "errors", "", "error stream to scan for the crash marker (defaults to the last log argument)")
	cmd.Flags().IntVar(&lastN, "last", 0, "number of trailing events to include, overrides config")
	return cmd
}
