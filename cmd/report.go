package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/ui/components"
)

var reportCmd = &cobra.Command{
	Use:   "report <learner-id>",
	Short: "Build and show a learner's analysis report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		width, _ := cmd.Flags().GetInt("width")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.builder.Build(cmd.Context(), args[0])
		if errors.Is(err, analysis.ErrNoHistory) {
			fmt.Fprintln(cmd.OutOrStdout(), "No mistakes recorded for this learner; nothing to report yet.")
			return nil
		}
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd, report)
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.ReportCard(*report, width))
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("json", false, "Print the report as JSON")
	reportCmd.Flags().Int("width", 72, "Width of the rendered report card")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
