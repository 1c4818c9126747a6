// Package scheduler runs the periodic maintenance of the dashboard: it
// refreshes the ticker and stock list of live sessions, closes expired
// sessions and prunes finished strategy jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/newthinker/tasi/internal/dashboard"
)

// Refresh statuses.
const (
	StatusLive     = "live"
	StatusFallback = "fallback"
)

// SessionSet defines the interface needed from dashboard.Sessions.
type SessionSet interface {
	List() []*dashboard.Controller
	Sweep() int
}

// JobPruner drops finished jobs past their retention.
type JobPruner interface {
	Prune() int
}

// Recorder is told the status of every session refresh.
type Recorder interface {
	RecordRefresh(status string)
}

// Report summarizes one run.
type Report struct {
	Refreshed int
	Fallback  int
	Swept     int
	Pruned    int
}

// Scheduler manages the cron task.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionSet
	jobs     JobPruner
	recorder Recorder
	logger   *zap.Logger
	timeout  time.Duration
}

// New creates a scheduler. jobs and recorder may be nil.
func New(sessions SessionSet, jobs JobPruner, recorder Recorder, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		jobs:     jobs,
		recorder: recorder,
		logger:   logger,
		timeout:  30 * time.Second,
	}
}

// Register schedules the refresh run with a six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunOnce performs one maintenance pass.
func (s *Scheduler) RunOnce(ctx context.Context) Report {
	var rep Report

	rep.Swept = s.sessions.Sweep()

	for _, ctrl := range s.sessions.List() {
		if ctx.Err() != nil {
			break
		}
		o := ctrl.Refresh(ctx)
		rep.Refreshed++
		status := StatusLive
		if o.Fallback() {
			status = StatusFallback
			rep.Fallback++
		}
		if s.recorder != nil {
			s.recorder.RecordRefresh(status)
		}
	}

	if s.jobs != nil {
		rep.Pruned = s.jobs.Prune()
	}

	s.logger.Debug("refresh run finished",
		zap.Int("refreshed", rep.Refreshed),
		zap.Int("fallback", rep.Fallback),
		zap.Int("swept", rep.Swept),
		zap.Int("pruned", rep.Pruned),
	)
	return rep
}
