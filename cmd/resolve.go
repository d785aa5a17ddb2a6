package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <event-id>",
	Short: "Mark a recorded mistake as resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		unresolve, _ := cmd.Flags().GetBool("unresolve")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.repo.SetResolved(cmd.Context(), args[0], !unresolve)
		if errors.Is(err, store.ErrEventNotFound) {
			return fmt.Errorf("event %s not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}

		state := "resolved"
		if unresolve {
			state = "unresolved"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as %s.\n", args[0], state)
		return nil
	},
}

func init() {
	resolveCmd.Flags().Bool("unresolve", false, "Clear the resolved flag instead of setting it")
}
