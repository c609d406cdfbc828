// Package scheduler runs the engine's periodic background jobs on cron specs:
//  1. poolStats – pushes a pool counters snapshot to WS clients.
//  2. heartbeat – logs ledger and hub gauges.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evetabi/slot/internal/config"
	"github.com/evetabi/slot/internal/domain"
	"github.com/robfig/cron/v3"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dependencies
// ──────────────────────────────────────────────────────────────────────────────

// WsHub defines the operations the Scheduler needs from the WebSocket hub.
// Declared here so the scheduler package does not import the ws package.
type WsHub interface {
	BroadcastPoolStats(stats domain.PoolStats)
	ConnectedCount() int
}

// LedgerStats is the read side of the ledger the jobs report on.
// Implemented by repository.Ledger.
type LedgerStats interface {
	PoolStats() domain.PoolStats
	Wallets() int
	RetainedWins() int
}

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

// Scheduler owns a cron runner and the jobs registered on it. Call Start(ctx)
// once from main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	cron   *cron.Cron
	ledger LedgerStats
	hub    WsHub
	cfg    *config.Config
	logger *slog.Logger
}

// NewScheduler creates a Scheduler. hub may be nil.
func NewScheduler(ledger LedgerStats, hub WsHub, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		ledger: ledger,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
	}
}

// Register adds every job to the cron runner. Returns an error for a
// malformed spec.
func (s *Scheduler) Register() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.PoolStatsSpec, s.BroadcastPoolStats); err != nil {
		return fmt.Errorf("scheduler.Register: pool stats %q: %w", s.cfg.Schedule.PoolStatsSpec, err)
	}
	if spec := s.cfg.Schedule.HeartbeatSpec; spec != "" {
		if _, err := s.cron.AddFunc(spec, s.Heartbeat); err != nil {
			return fmt.Errorf("scheduler.Register: heartbeat %q: %w", spec, err)
		}
	}
	return nil
}

// Start registers the jobs and starts the runner. It returns immediately;
// jobs run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Register(); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started",
		"pool_stats", s.cfg.Schedule.PoolStatsSpec, "heartbeat", s.cfg.Schedule.HeartbeatSpec)

	go func() {
		<-ctx.Done()
		// Wait for running jobs to finish.
		<-s.cron.Stop().Done()
		s.logger.Info("scheduler stopped")
	}()
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Jobs
// ──────────────────────────────────────────────────────────────────────────────

// BroadcastPoolStats pushes the current pool counters to all WS clients.
func (s *Scheduler) BroadcastPoolStats() {
	defer s.recoverAndLog("poolStats")

	if s.hub == nil || s.hub.ConnectedCount() == 0 {
		return
	}
	s.hub.BroadcastPoolStats(s.ledger.PoolStats())
}

// Heartbeat logs ledger and hub gauges.
func (s *Scheduler) Heartbeat() {
	defer s.recoverAndLog("heartbeat")

	clients := 0
	if s.hub != nil {
		clients = s.hub.ConnectedCount()
	}
	stats := s.ledger.PoolStats()
	s.logger.Info("heartbeat",
		"wallets", s.ledger.Wallets(),
		"recent_wins", s.ledger.RetainedWins(),
		"volume", stats.Volume24h,
		"ws_clients", clients)
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each job to catch unexpected panics,
// log them, and keep the runner alive.
func (s *Scheduler) recoverAndLog(job string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler job",
			"job", job, "panic", r)
	}
}
