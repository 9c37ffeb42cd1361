package commands

import (
	"github.com/spf13/cobra"

	"github.com/simaudit-dev/simaudit/internal/report"
)

func newVerifyCommand() *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "verify <log> [log...]",
		Short: "Verify total-wealth conservation across a run",
		Long: `Replays economic events from one or more log streams and checks, at every
iteration, that total wealth changed only through tagged external injection
or extraction. Multiple streams (console, error, combined) are merged by
iteration before replay. Exits non-zero when any violation is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tolerance, err := opts.load()
			if err != nil {
				return err
			}

			events, stats, err := ingestFiles(args)
			if err != nil {
				return err
			}

			res, violations := reconstruct(events, tolerance)
			rep := newReport(args[0], stats, res)
			for _, v := range violations {
				rep.Violations = append(rep.Violations, report.ViolationReport{Violation: v})
			}
			return finish(cmd, rep, opts.output)
		},
	}

	opts.register(cmd)
	return cmd
}
