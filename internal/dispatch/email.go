package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// Subjects of the messages the Email dispatcher sends.
const (
	SubjectFirstMistakeAdmin   = "First Coding Mistake Alert - User Needs Attention"
	SubjectFirstMistakeLearner = "Let's Help You Master C++ - Free Consultation Available!"
	subjectConsultationFormat  = "Your C++ Learning Analysis & Free Consultation Offer - %s"
	subjectWeeklyFormat        = "Weekly Mistake Report - %s (%s)"
)

// MailSender delivers one prepared message.
type MailSender interface {
	Send(ctx context.Context, m *sgmail.SGMailV3) error
}

// SendGridSender posts messages to the SendGrid v3 API.
type SendGridSender struct {
	key  string
	host string
}

// NewSendGridSender creates a sender using apiKey. An empty host means the
// public SendGrid API.
func NewSendGridSender(apiKey, host string) *SendGridSender {
	if host == "" {
		host = sendGridHost
	}
	return &SendGridSender{key: apiKey, host: host}
}

func (s *SendGridSender) Send(_ context.Context, m *sgmail.SGMailV3) error {
	req := sendgrid.GetRequest(s.key, sendGridEndpoint, s.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, strings.TrimSpace(res.Body))
	}
	return nil
}

// EmailConfig names the addresses used by the Email dispatcher.
type EmailConfig struct {
	FromName   string
	FromEmail  string
	AdminEmail string
}

// Email turns signals into plain-text emails: first mistakes go to the admin
// and the learner, consultation offers to the learner, weekly reports to the
// admin. Messages without a recipient address are skipped.
type Email struct {
	sender MailSender
	from   *sgmail.Email
	admin  string
	log    *logging.Logger
}

// NewEmail creates an Email dispatcher.
func NewEmail(sender MailSender, cfg EmailConfig, log *logging.Logger) *Email {
	if log == nil {
		log = logging.Nop()
	}
	return &Email{
		sender: sender,
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		admin:  cfg.AdminEmail,
		log:    log.With("dispatcher", "email"),
	}
}

type message struct {
	toName, toAddr string
	subject        string
	body           string
}

func (e *Email) Dispatch(ctx context.Context, sig notify.Signal) error {
	msgs, err := e.messages(sig)
	if err != nil {
		return err
	}

	var errs []error
	for _, msg := range msgs {
		if msg.toAddr == "" {
			e.log.Warn("no recipient, email skipped", "kind", sig.Kind(), "subject", msg.subject)
			continue
		}
		if err := e.sender.Send(ctx, e.prepare(msg)); err != nil {
			errs = append(errs, fmt.Errorf("send %q to %s: %w", msg.subject, msg.toAddr, err))
			continue
		}
		e.log.Debug("email sent", "kind", sig.Kind(), "to", msg.toAddr)
	}
	return errors.Join(errs...)
}

func (e *Email) messages(sig notify.Signal) ([]message, error) {
	switch s := sig.(type) {
	case *notify.FirstMistakeSignal:
		adminBody, err := render(firstMistakeAdminTmpl, s)
		if err != nil {
			return nil, err
		}
		learnerBody, err := render(firstMistakeLearnerTmpl, s)
		if err != nil {
			return nil, err
		}
		return []message{
			{toAddr: e.admin, subject: SubjectFirstMistakeAdmin, body: adminBody},
			{toName: s.Event.LearnerName, toAddr: s.Event.LearnerEmail, subject: SubjectFirstMistakeLearner, body: learnerBody},
		}, nil

	case *notify.ConsultationSignal:
		body, err := render(consultationTmpl, s)
		if err != nil {
			return nil, err
		}
		return []message{{
			toName:  s.Report.LearnerName,
			toAddr:  s.Report.LearnerEmail,
			subject: fmt.Sprintf(subjectConsultationFormat, s.Report.LearnerName),
			body:    body,
		}}, nil

	case *notify.WeeklyReportSignal:
		body, err := render(weeklyReportTmpl, s)
		if err != nil {
			return nil, err
		}
		return []message{{
			toAddr:  e.admin,
			subject: fmt.Sprintf(subjectWeeklyFormat, s.Report.LearnerName, s.Report.OverallProgress),
			body:    body,
		}}, nil
	}
	return nil, fmt.Errorf("email: unsupported signal kind %q", sig.Kind())
}

func (e *Email) prepare(msg message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.subject
	p.AddTos(sgmail.NewEmail(msg.toName, msg.toAddr))

	m := sgmail.NewV3Mail()
	m.SetFrom(e.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.body))
	return m
}
