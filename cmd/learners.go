package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var learnersCmd = &cobra.Command{
	Use:   "learners",
	Short: "List learners with recorded mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.repo.Learners(cmd.Context())
		if err != nil {
			return fmt.Errorf("list learners: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No learners yet.")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	},
}
