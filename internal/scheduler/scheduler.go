// Package scheduler runs periodic maintenance jobs: purging expired
// operator sessions and sweeping idle list views.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds job schedules in cron syntax (descriptors such as
// "@every 5m" are accepted).
type Config struct {
	PurgeSessions string
	SweepViews    string
	ViewIdle      time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PurgeSessions: "@every 15m",
		SweepViews:    "@every 5m",
		ViewIdle:      30 * time.Minute,
	}
}

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// ViewSweeper evicts list views idle for longer than the given duration.
type ViewSweeper interface {
	Sweep(idle time.Duration) int
}

// Scheduler owns the cron instance and its jobs.
type Scheduler struct {
	cron     *cron.Cron
	config   Config
	sessions SessionPurger
	views    ViewSweeper
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a scheduler. Either collaborator may be nil to skip its job.
func New(cfg Config, sessions SessionPurger, views ViewSweeper, logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		config:   cfg,
		sessions: sessions,
		views:    views,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop. It does not block.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler already running")
	}
	if s.sessions != nil && s.config.PurgeSessions != "" {
		if _, err := s.cron.AddFunc(s.config.PurgeSessions, s.purgeSessions); err != nil {
			return fmt.Errorf("schedule session purge %q: %w", s.config.PurgeSessions, err)
		}
	}
	if s.views != nil && s.config.SweepViews != "" {
		if _, err := s.cron.AddFunc(s.config.SweepViews, s.sweepViews); err != nil {
			return fmt.Errorf("schedule view sweep %q: %w", s.config.SweepViews, err)
		}
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Tick runs every job once. Used for testing.
func (s *Scheduler) Tick() {
	if s.sessions != nil {
		s.purgeSessions()
	}
	if s.views != nil {
		s.sweepViews()
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		s.logger.Error("purge sessions", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", "count", n)
	}
}

func (s *Scheduler) sweepViews() {
	idle := s.config.ViewIdle
	if idle <= 0 {
		idle = DefaultConfig().ViewIdle
	}
	s.views.Sweep(idle)
}
