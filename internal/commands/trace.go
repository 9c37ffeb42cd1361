package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaudit-dev/simaudit/internal/model"
)

func newTraceCommand() *cobra.Command {
	var opts auditOptions
	var agent string
	var kind string
	var every int

	cmd := &cobra.Command{
		Use:   "trace <log> [log...]",
		Short: "Trace expense accumulation per kind over the run",
		Long: `Prints cumulative totals per event kind at sampled iterations, optionally
restricted to one agent or one kind. Useful for spotting a charge that grows
faster than it should between settlements.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := opts.load(); err != nil {
				return err
			}

			events, _, err := ingestFiles(args)
			if err != nil {
				return err
			}

			rows := traceAccumulation(events, agent, kind, every)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ITERATION\tKIND\tEVENTS\tCUMULATIVE")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", r.Iteration, r.Kind, r.Count, r.Cumulative.StringFixed(2))
			}
			return w.Flush()
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&agent, "agent", "", "restrict the trace to one agent id")
	cmd.Flags().StringVar(&kind, "kind", "", "restrict the trace to one event kind")
	cmd.Flags().IntVar(&every, "every", 1, "sample every Nth distinct iteration")
	return cmd
}

type traceRow struct {
	Iteration  int
	Kind       string
	Count      int
	Cumulative decimal.Decimal
}

// traceAccumulation folds the event stream into cumulative per-kind totals,
// emitting one row per kind at every sampled iteration where that kind moved.
func traceAccumulation(events []model.Event, agent, kind string, every int) []traceRow {
	if every < 1 {
		every = 1
	}

	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	model.SortEvents(ordered)

	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	var rows []traceRow

	sample := 0
	for start := 0; start < len(ordered); {
		iteration := ordered[start].Iteration
		end := start
		for end < len(ordered) && ordered[end].Iteration == iteration {
			end++
		}

		moved := make(map[string]bool)
		for _, ev := range ordered[start:end] {
			if agent != "" && ev.Agent != agent {
				continue
			}
			if kind != "" && ev.Kind != kind {
				continue
			}
			totals[ev.Kind] = totals[ev.Kind].Add(ev.Amount)
			counts[ev.Kind]++
			moved[ev.Kind] = true
		}

		if len(moved) > 0 && sample%every == 0 {
			kinds := make([]string, 0, len(moved))
			for k := range moved {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				rows = append(rows, traceRow{
					Iteration:  iteration,
					Kind:       k,
					Count:      counts[k],
					Cumulative: totals[k],
				})
			}
		}
		if len(moved) > 0 {
			sample++
		}

		start = end
	}
	return rows
}
