// Package schedule runs the weekly report fan-out on a cron schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron"

	"github.com/riddhika-19/openboxcodelearn/internal/analysis"
	"github.com/riddhika-19/openboxcodelearn/internal/logging"
	"github.com/riddhika-19/openboxcodelearn/internal/metrics"
	"github.com/riddhika-19/openboxcodelearn/internal/notify"
)

// LearnerLister enumerates learners with recorded mistakes.
type LearnerLister interface {
	Learners(ctx context.Context) ([]string, error)
}

// WeeklyRequester is the part of notify.Trigger the job uses.
type WeeklyRequester interface {
	RequestWeeklyReportSignal(ctx context.Context, learnerID string) (*notify.WeeklyReportSignal, error)
}

// Result summarizes one fan-out.
type Result struct {
	Sent    int
	Skipped int // learners with nothing to report
	Failed  int
}

// Job requests a weekly report signal for every known learner.
type Job struct {
	learners LearnerLister
	trigger  WeeklyRequester
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// NewJob creates a Job. log and m may be nil.
func NewJob(learners LearnerLister, trigger WeeklyRequester, log *logging.Logger, m *metrics.Metrics) *Job {
	if log == nil {
		log = logging.Nop()
	}
	return &Job{learners: learners, trigger: trigger, log: log.With("job", "weekly"), metrics: m}
}

// RunOnce performs one fan-out. Per-learner failures are counted, logged and
// do not stop the run; only failing to list learners is returned.
func (j *Job) RunOnce(ctx context.Context) (Result, error) {
	ids, err := j.learners.Learners(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list learners: %w", err)
	}

	var res Result
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		_, err := j.trigger.RequestWeeklyReportSignal(ctx, id)
		switch {
		case err == nil:
			res.Sent++
		case errors.Is(err, analysis.ErrNoHistory):
			res.Skipped++
		default:
			res.Failed++
			j.log.Warn("weekly report failed", "learner", id, "error", err)
		}
	}

	j.metrics.RecordWeeklyRun(res.Failed)
	j.log.Info("weekly reports done", "sent", res.Sent, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// Scheduler fires a Job on a six-field cron spec (seconds first), e.g.
// "0 0 9 * * MON" for Mondays at 09:00.
type Scheduler struct {
	cron *cron.Cron
	spec string
}

// New validates spec and registers job. ctx is passed to every run.
func New(ctx context.Context, spec string, job *Job) (*Scheduler, error) {
	if _, err := cron.Parse(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	c := cron.New()
	err := c.AddFunc(spec, func() {
		if _, err := job.RunOnce(ctx); err != nil {
			job.log.Error("weekly run aborted", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("register weekly job: %w", err)
	}
	return &Scheduler{cron: c, spec: spec}, nil
}

// Spec returns the cron expression the scheduler runs on.
func (s *Scheduler) Spec() string { return s.spec }

// Run starts the scheduler and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	s.cron.Stop()
}
