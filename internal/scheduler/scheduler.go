// Package scheduler drives the engine on a fixed interval for the watch
// command and runs the periodic retention cleanup against the remote
// change table.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bazaarsync/internal/engine"
)

// CycleRunner runs one sync cycle. Satisfied by *engine.Engine.
type CycleRunner interface {
	RunCycle(ctx context.Context, opts engine.Options) (*engine.CycleResult, error)
}

// Cleaner removes aged-out rows from the remote change table. Satisfied by
// *store.Client; nil disables the cleanup loop.
type Cleaner interface {
	Configured() bool
	DeleteChangesBefore(ctx context.Context, cutoff time.Time) error
}

// Config holds scheduler configuration.
type Config struct {
	Interval        time.Duration // Sync interval (default: 5m)
	CleanupInterval time.Duration // Remote cleanup cadence (default: 1h)
	RetentionWindow time.Duration // Remote change rows older than this are deleted (default: 8h)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:        5 * time.Minute,
		CleanupInterval: time.Hour,
		RetentionWindow: 8 * time.Hour,
	}
}

// Scheduler runs sync cycles back to back on a ticker. Cycles never
// overlap: a cycle that outlasts the interval simply delays the next tick.
type Scheduler struct {
	cfg     Config
	runner  CycleRunner
	cleaner Cleaner
	opts    engine.Options
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler around a cycle runner.
func New(cfg Config, runner CycleRunner, cleaner Cleaner, opts engine.Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if cfg.RetentionWindow <= 0 {
		cfg.RetentionWindow = DefaultConfig().RetentionWindow
	}
	return &Scheduler{
		cfg:     cfg,
		runner:  runner,
		cleaner: cleaner,
		opts:    opts,
		logger:  logger,
	}
}

// RunOnce runs a single sync cycle and returns its error.
func (s *Scheduler) RunOnce(ctx context.Context) (*engine.CycleResult, error) {
	return s.runner.RunCycle(ctx, s.opts)
}

// Run starts the loops and blocks until ctx is cancelled, then shuts down
// via Stop.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// Start begins the sync and cleanup loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.run()

	if s.cleaner != nil && s.cleaner.Configured() {
		s.wg.Add(1)
		go s.runCleanup()
	}

	s.logger.Info("scheduler started",
		"interval", s.cfg.Interval,
		"retention", s.cfg.RetentionWindow,
	)
	return nil
}

// Stop shuts the scheduler down: the loop context is cancelled, which
// aborts any in-flight cycle, and Stop waits for the goroutines to unwind.
// An aborted cycle loses only its own progress, like a crash mid-cycle.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main sync loop.
func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// Sync immediately on start.
	s.cycle()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cycle()
		}
	}
}

// cycle runs one sync cycle. Failures are logged and the loop continues;
// a transient API outage should not kill a long-running watch.
func (s *Scheduler) cycle() {
	if _, err := s.runner.RunCycle(s.ctx, s.opts); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Error("sync cycle failed", "err", err)
	}
}

// runCleanup periodically deletes remote change rows older than the
// retention window. One pass runs at startup so a long-stopped watcher
// catches up immediately.
func (s *Scheduler) runCleanup() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Scheduler) cleanup() {
	cutoff := time.Now().UTC().Add(-s.cfg.RetentionWindow)
	if err := s.cleaner.DeleteChangesBefore(s.ctx, cutoff); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Warn("remote change cleanup failed", "err", err)
		return
	}
	s.logger.Info("remote change cleanup complete", "cutoff", cutoff)
}
