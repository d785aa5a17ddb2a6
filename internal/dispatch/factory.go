package dispatch

import (
	"fmt"

	"github.com/riddhika-19/openboxcodelearn/internal/config"
	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

// FromConfig assembles the dispatchers named in cfg.Dispatch into one
// notify.Dispatcher. The returned cleanup func releases any connections and
// is safe to call when err is non-nil.
func FromConfig(cfg config.Config, log *logging.Logger) (notify.Dispatcher, func(), error) {
	var out Multi
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	for _, name := range cfg.Dispatch {
		switch name {
		case config.DispatchLog:
			out = append(out, NewLog(log))

		case config.DispatchEmail:
			sender := NewSendGridSender(cfg.SendGrid.APIKey, "")
			out = append(out, NewEmail(sender, EmailConfig{
				FromName:   cfg.Email.FromName,
				FromEmail:  cfg.Email.From,
				AdminEmail: cfg.Email.Admin,
			}, log))

		case config.DispatchNATS:
			nc, err := ConnectNATS(cfg.NATS.URL, log)
			if err != nil {
				return nil, cleanup, err
			}
			closers = append(closers, nc.Close)
			out = append(out, NewBus(nc, cfg.NATS.SubjectPrefix, log))

		default:
			return nil, cleanup, fmt.Errorf("unknown dispatcher: %q", name)
		}
	}

	if len(out) == 1 {
		return out[0], cleanup, nil
	}
	return out, cleanup, nil
}
