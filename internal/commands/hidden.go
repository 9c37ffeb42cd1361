package commands

import (
	"github.com/spf13/cobra"

	"github.com/simaudit-dev/simaudit/internal/localize"
	"github.com/simaudit-dev/simaudit/internal/report"
)

func newHiddenCommand() *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "hidden <log> [log...]",
		Short: "Search for hidden expenses behind conservation violations",
		Long: `Runs the conservation audit, then bisects each violation back to the first
divergent iteration and ranks the event categories there by absolute
contribution. The top-ranked category is the most likely hidden-expense
source.`,
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
				loc := localize.Localize(v, events, tolerance)
				rep.Violations = append(rep.Violations, report.ViolationReport{
					Violation:    v,
					Localization: &loc,
				})
			}
			return finish(cmd, rep, opts.output)
		},
	}

	opts.register(cmd)
	return cmd
}
