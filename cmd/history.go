package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <learner-id>",
	Short: "List a learner's mistakes in the order they were recorded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.repo.HistoryFor(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No mistakes recorded for this learner.")
			return nil
		}

		// Most recent last; --limit keeps the tail.
		if limit > 0 && len(events) > limit {
			events = events[len(events)-limit:]
		}

		fmt.Fprintf(out, "%-36s  %-19s  %-13s  %-24s  %-4s  %s\n",
			"ID", "Timestamp", "Type", "Topic", "Try", "Resolved")
		fmt.Fprintln(out, strings.Repeat("─", 112))

		for _, e := range events {
			if topic != "" && !strings.Contains(strings.ToLower(e.Topic), strings.ToLower(topic)) {
				continue
			}
			resolved := " "
			if e.Resolved {
				resolved = "✓"
			}
			t := e.Topic
			if len(t) > 24 {
				t = t[:24]
			}
			fmt.Fprintf(out, "%-36s  %-19s  %-13s  %-24s  %-4d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Type,
				t,
				e.Attempts,
				resolved,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 0, "Show only the most recent N events")
	historyCmd.Flags().String("topic", "", "Filter by topic substring")
}
