package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mistake statistics across all learners",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		ids, err := a.repo.Learners(ctx)
		if err != nil {
			return fmt.Errorf("list learners: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No mistakes recorded yet.")
			return nil
		}

		now := time.Now()
		byType := make(map[mistake.Type]int)
		byProgress := make(map[analysis.Progress]int)
		var total int

		// Per learner.
		fmt.Fprintln(out, "Learners")
		fmt.Fprintln(out, strings.Repeat("─", 78))
		fmt.Fprintf(out, "%-28s  %6s  %6s  %9s  %8s  %s\n",
			"Learner", "Total", "Recent", "Resolved", "Avg Try", "Progress")
		fmt.Fprintln(out, strings.Repeat("─", 78))

		for _, id := range ids {
			history, err := a.repo.HistoryFor(ctx, id)
			if err != nil {
				return fmt.Errorf("load history for %s: %w", id, err)
			}
			if len(history) == 0 {
				continue
			}
			m := analysis.ComputeMetrics(history, now)
			p := analysis.ClassifyMetrics(m)
			byProgress[p]++
			total += len(history)
			for _, e := range history {
				byType[e.Type]++
			}

			name := id
			if len(name) > 28 {
				name = name[:28]
			}
			fmt.Fprintf(out, "%-28s  %6d  %6d  %8.0f%%  %8.2f  %s\n",
				name, len(history), m.RecentCount, m.ResolvedRate*100, m.AvgAttempts, p)
		}
		fmt.Fprintln(out, strings.Repeat("─", 78))
		fmt.Fprintf(out, "%-28s  %6d\n", "TOTAL", total)

		// By type.
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Mistakes by Type")
		fmt.Fprintln(out, strings.Repeat("─", 32))
		for _, t := range mistake.AllTypes() {
			fmt.Fprintf(out, "%-16s  %6d\n", t, byType[t])
		}

		// By progress.
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Learners by Progress")
		fmt.Fprintln(out, strings.Repeat("─", 32))
		for _, p := range []analysis.Progress{
			analysis.ProgressExcellent,
			analysis.ProgressGood,
			analysis.ProgressNeedsImprovement,
			analysis.ProgressStruggling,
		} {
			fmt.Fprintf(out, "%-18s  %4d\n", p, byProgress[p])
		}
		return nil
	},
}
