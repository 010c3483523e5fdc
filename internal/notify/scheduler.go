// Package notify turns store re-reads into events for each actor.
//
// Neither actor is ever called back by the other. Each runs a watcher on a
// timer that re-reads the keys it cares about and dispatches idempotent
// handlers for what changed. Observations are at-least-once, so every
// handler must tolerate seeing the same state twice.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"assistflow/internal/platform/metrics"
)

// Poll outcomes recorded on the ticks counter.
const (
	outcomeObserved = "observed"
	outcomeIdle     = "idle"
	outcomeError    = "error"
)

// PollFunc runs one re-read. observed reports whether anything new was
// dispatched.
type PollFunc func(ctx context.Context) (observed bool, err error)

// Scheduler runs watchers on fixed intervals. A tick that is still running
// when the next one fires is skipped, and a panicking tick is recovered.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *metrics.Metrics
	ctx     context.Context
}

// NewScheduler creates a scheduler. metrics may be nil.
func NewScheduler(logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	))
	return &Scheduler{
		cron:    c,
		logger:  logger,
		metrics: m,
		ctx:     context.Background(),
	}
}

// Every schedules fn under name. Intervals below one second are rounded up
// by cron.
func (s *Scheduler) Every(interval time.Duration, name string, fn PollFunc) error {
	if interval <= 0 {
		return fmt.Errorf("schedule %s: interval must be positive", name)
	}
	spec := "@every " + interval.String()
	if _, err := s.cron.AddFunc(spec, func() { s.tick(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.logger.Info("scheduled poller", "watcher", name, "interval", interval.String())
	return nil
}

func (s *Scheduler) tick(name string, fn PollFunc) {
	observed, err := fn(s.ctx)
	outcome := outcomeIdle
	switch {
	case err != nil:
		outcome = outcomeError
		s.logger.WarnContext(s.ctx, "poll failed", "watcher", name, "error", err)
	case observed:
		outcome = outcomeObserved
	}
	if s.metrics != nil {
		s.metrics.PollerTicks.WithLabelValues(name, outcome).Inc()
	}
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running ticks to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
