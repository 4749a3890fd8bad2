/*
scheduler.go - Daily reset-pass scheduler

PURPOSE:
  Runs the reset-detection pass once a day so auto-claims, silent rolls,
  and pending-manual queueing happen even when nobody opens the tool.
  Boundaries are day-granular, so one run shortly after midnight UTC is
  enough; a second run in the same day is a no-op (the pass is
  idempotent).

USAGE:
  sched := NewScheduler(trk, log)
  if err := sched.Start(); err != nil { ... }
  // ... later
  sched.Stop()

SEE ALSO:
  - tracker.RunResetPass: the pass itself
  - handlers.go: POST /api/resets/run (manual trigger)
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/warp/benefit-engine/cycle"
	"github.com/warp/benefit-engine/tracker"
)

// DefaultSchedule fires at 00:05 UTC, just after the day boundary.
const DefaultSchedule = "5 0 * * *"

// Scheduler triggers the daily reset pass.
type Scheduler struct {
	Tracker  *tracker.Tracker
	Log      *logrus.Logger
	Schedule string

	c *cron.Cron
}

// NewScheduler creates a scheduler with the default daily schedule.
func NewScheduler(t *tracker.Tracker, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	return &Scheduler{Tracker: t, Log: log, Schedule: DefaultSchedule}
}

// Start registers the cron entry and begins ticking.
func (s *Scheduler) Start() error {
	s.c = cron.New(cron.WithLocation(time.UTC))
	if _, err := s.c.AddFunc(s.Schedule, s.runOnce); err != nil {
		return err
	}
	s.c.Start()
	s.Log.WithField("schedule", s.Schedule).Info("reset scheduler started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.c == nil {
		return
	}
	ctx := s.c.Stop()
	<-ctx.Done()
	s.Log.Info("reset scheduler stopped")
}

func (s *Scheduler) runOnce() {
	today := cycle.FromTime(time.Now().UTC())
	result, err := s.Tracker.RunResetPass(context.Background(), today)
	if err != nil {
		s.Log.WithError(err).Error("scheduled reset pass failed")
		return
	}
	if result.Changed() || len(result.Pending) > 0 {
		s.Log.WithFields(logrus.Fields{
			"auto_claimed": len(result.AutoClaimed),
			"auto_reset":   len(result.AutoReset),
			"silent_roll":  len(result.SilentRoll),
			"pending":      len(result.Pending),
		}).Info("scheduled reset pass completed")
	}
}
