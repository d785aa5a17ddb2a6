package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
	"github.com/riddhika-19/openboxcodelearn/internal/schedule"
)

const nothingToReport = "No mistakes recorded for this learner; nothing to report yet."

var consultCmd = &cobra.Command{
	Use:   "consult <learner-id>",
	Short: "Send a learner their analysis with a free consultation offer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sig, err := a.trigger.RequestConsultationSignal(cmd.Context(), args[0])
		if errors.Is(err, analysis.ErrNoHistory) {
			fmt.Fprintln(cmd.OutOrStdout(), nothingToReport)
			return nil
		}
		if err != nil {
			return describeSignalError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Consultation signal sent for %s (%s, %d mistakes).\n",
			sig.LearnerID(), sig.Report.OverallProgress, sig.Report.TotalMistakes)
		return nil
	},
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly [learner-id]",
	Short: "Emit weekly report signals now",
	Long: "Emit a weekly report signal for one learner, or for every learner with " +
		"recorded mistakes when no ID is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			sig, err := a.trigger.RequestWeeklyReportSignal(cmd.Context(), args[0])
			if errors.Is(err, analysis.ErrNoHistory) {
				fmt.Fprintln(out, nothingToReport)
				return nil
			}
			if err != nil {
				return describeSignalError(err)
			}
			fmt.Fprintf(out, "Weekly report signal sent for %s (%s).\n",
				sig.LearnerID(), sig.Report.OverallProgress)
			return nil
		}

		res, err := schedule.NewJob(a.repo, a.trigger, a.log, a.metrics).RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Weekly reports: %d sent, %d skipped, %d failed.\n", res.Sent, res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d weekly report(s) not delivered", res.Failed)
		}
		return nil
	},
}

func describeSignalError(err error) error {
	var de *notify.DispatchError
	if errors.As(err, &de) {
		return fmt.Errorf("report built but not delivered: %w", de.Err)
	}
	return err
}
