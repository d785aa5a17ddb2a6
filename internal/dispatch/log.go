package dispatch

import (
	"context"

	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

// Log writes one structured line per signal. It is the default dispatcher
// when nothing else is configured.
type Log struct {
	log *logging.Logger
}

func NewLog(log *logging.Logger) *Log {
	if log == nil {
		log = logging.Nop()
	}
	return &Log{log: log.With("dispatcher", "log")}
}

func (l *Log) Dispatch(_ context.Context, sig notify.Signal) error {
	fields := []any{"kind", string(sig.Kind()), "learner", sig.LearnerID()}

	switch s := sig.(type) {
	case *notify.FirstMistakeSignal:
		fields = append(fields,
			"event", s.Event.ID,
			"type", string(s.Event.Type),
			"topic", s.Event.Topic,
			"email", s.Event.LearnerEmail,
		)
	case *notify.ConsultationSignal:
		fields = append(fields,
			"progress", string(s.Report.OverallProgress),
			"total", s.Report.TotalMistakes,
			"lessons", s.Report.RecommendedLessons,
		)
	case *notify.WeeklyReportSignal:
		fields = append(fields,
			"progress", string(s.Report.OverallProgress),
			"total", s.Report.TotalMistakes,
			"byType", s.Report.MistakesByType,
		)
	}

	l.log.Info("signal", fields...)
	return nil
}
