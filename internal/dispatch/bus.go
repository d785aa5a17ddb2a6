package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

// DefaultSubjectPrefix is prepended to the signal kind to form the subject.
const DefaultSubjectPrefix = "openbox.signals"

// Publisher is the part of *nats.Conn the Bus needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope is the JSON body published for every signal.
type Envelope struct {
	Kind      notify.Kind   `json:"kind"`
	LearnerID string        `json:"learnerId"`
	EmittedAt time.Time     `json:"emittedAt"`
	Payload   notify.Signal `json:"payload"`
}

// Bus publishes signals to NATS on "<prefix>.<kind>".
type Bus struct {
	pub    Publisher
	prefix string
	now    func() time.Time
	log    *logging.Logger
}

// NewBus creates a Bus over pub.
func NewBus(pub Publisher, prefix string, log *logging.Logger) *Bus {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Bus{
		pub:    pub,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log.With("dispatcher", "nats"),
	}
}

// ConnectNATS dials url with reconnects enabled. The caller closes the
// returned connection.
func ConnectNATS(url string, log *logging.Logger) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if log == nil {
		log = logging.Nop()
	}
	nc, err := nats.Connect(url,
		nats.Name("openbox"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject a signal of kind is published on.
func (b *Bus) Subject(kind notify.Kind) string {
	return b.prefix + "." + string(kind)
}

func (b *Bus) Dispatch(ctx context.Context, sig notify.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Envelope{
		Kind:      sig.Kind(),
		LearnerID: sig.LearnerID(),
		EmittedAt: b.now(),
		Payload:   sig,
	})
	if err != nil {
		return fmt.Errorf("marshal %s signal: %w", sig.Kind(), err)
	}

	subject := b.Subject(sig.Kind())
	if err := b.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	b.log.Debug("signal published", "subject", subject, "learner", sig.LearnerID())
	return nil
}
