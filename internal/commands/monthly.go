package commands

import (
	"github.com/spf13/cobra"

	"github.com/simaudit-dev/simaudit/internal/monthly"
)

func newMonthlyCommand() *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "monthly <log> [log...]",
		Short: "Check recurring month-end charges fire exactly once per boundary",
		Long: `Infers month boundaries from the configured calendar and verifies that each
expected recurring charge (rent, tax, subsidy by default) fires exactly one
cycle per boundary. Reports DuplicateApplication when a charge hits the same
agent twice inside one boundary and MissingApplication when an expected
charge never fires.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, tolerance, err := opts.load()
			if err != nil {
				return err
			}

			events, stats, err := ingestFiles(args)
			if err != nil {
				return err
			}

			res, _ := reconstruct(events, tolerance)
			rep := newReport(args[0], stats, res)

			maxIteration := 0
			if n := len(res.Snapshots); n > 0 {
				maxIteration = res.Snapshots[n-1].Iteration
			}
			boundaries := monthly.Boundaries(maxIteration, cfg.Period())
			rep.Monthly = monthly.Analyze(events, boundaries, cfg.Monthly.ExpectedKinds)

			return finish(cmd, rep, opts.output)
		},
	}

	opts.register(cmd)
	return cmd
}
