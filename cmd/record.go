package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riddhika-19/openboxcodelearn/internal/mistake"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a mistake event",
	Long: "Record a mistake event from flags, or from a JSON document with --file " +
		"(use - for stdin).",
	Example: `  openbox record --learner u-42 --type syntax --difficulty beginner \
      --topic "Basic Syntax" --message "expected ';'"
  echo '{"learnerId":"u-42",...}' | openbox record --file -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := readNewEvent(cmd)
		if err != nil {
			return err
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ev, sig, err := a.trigger.Record(cmd.Context(), n)
		if err != nil {
			var invalid *mistake.InvalidEventError
			if errors.As(err, &invalid) {
				return reportInvalid(cmd.ErrOrStderr(), invalid)
			}
			return fmt.Errorf("record mistake: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, ev)
		}

		fmt.Fprintf(out, "Recorded %s for %s (%s, %s)\n", ev.ID, ev.LearnerID, ev.Type, ev.Topic)
		if sig != nil {
			fmt.Fprintln(out, "First mistake for this learner: signal emitted.")
		}
		return nil
	},
}

func init() {
	f := recordCmd.Flags()
	f.String("file", "", "Read the event as JSON from this file (- for stdin)")
	f.Bool("json", false, "Print the stored event as JSON")

	f.String("learner", "", "Learner ID")
	f.String("name", "", "Learner display name")
	f.String("email", "", "Learner email")
	f.String("lesson", "", "Lesson reference")
	f.String("type", "", "Mistake type: "+typeList())
	f.String("message", "", "Compiler or runtime message")
	f.String("code", "", "The learner's code")
	f.String("correct-code", "", "A corrected version of the code")
	f.String("difficulty", "", "Lesson difficulty: beginner, intermediate or advanced")
	f.String("topic", "", "Lesson topic")
	f.Int("attempts", 1, "Attempts before the mistake was recorded")
	f.Int("time-spent", 0, "Seconds spent on the exercise")
	f.Int("hints", 0, "Hints used")
}

func readNewEvent(cmd *cobra.Command) (mistake.New, error) {
	file, _ := cmd.Flags().GetString("file")
	if file != "" {
		var r io.Reader = cmd.InOrStdin()
		if file != "-" {
			fh, err := os.Open(file)
			if err != nil {
				return mistake.New{}, fmt.Errorf("open event file: %w", err)
			}
			defer fh.Close()
			r = fh
		}
		n, err := mistake.DecodeNew(r)
		if err != nil {
			var invalid *mistake.InvalidEventError
			if errors.As(err, &invalid) {
				return mistake.New{}, reportInvalid(cmd.ErrOrStderr(), invalid)
			}
			return mistake.New{}, err
		}
		return n, nil
	}

	f := cmd.Flags()
	str := func(name string) string { s, _ := f.GetString(name); return s }
	num := func(name string) int { i, _ := f.GetInt(name); return i }

	return mistake.New{
		LearnerID:        str("learner"),
		LearnerName:      str("name"),
		LearnerEmail:     str("email"),
		LessonRef:        str("lesson"),
		Type:             mistake.Type(strings.ToLower(str("type"))),
		Message:          str("message"),
		UserCode:         str("code"),
		CorrectCode:      str("correct-code"),
		Difficulty:       mistake.Difficulty(strings.ToLower(str("difficulty"))),
		Topic:            str("topic"),
		Attempts:         num("attempts"),
		TimeSpentSeconds: num("time-spent"),
		HintsUsed:        num("hints"),
	}, nil
}

// reportInvalid prints one line per rejected field and returns the error.
func reportInvalid(w io.Writer, err *mistake.InvalidEventError) error {
	fmt.Fprintln(w, "Invalid mistake event:")
	for _, fe := range err.Fields {
		fmt.Fprintf(w, "  %-16s %s\n", fe.Field, fe.Message)
	}
	return err
}

func typeList() string {
	types := mistake.AllTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
