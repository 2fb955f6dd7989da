// Package scheduler runs background maintenance for stored invoice documents.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cleaner removes expired print jobs and their documents
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// RetentionSchedulerConfig holds configuration for the retention scheduler
type RetentionSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is the time between cleanup runs
	Interval time.Duration

	// Timeout is the maximum time for a single run
	Timeout time.Duration

	// RunOnStart performs a cleanup as soon as the scheduler starts
	RunOnStart bool
}

// DefaultRetentionSchedulerConfig returns default configuration
func DefaultRetentionSchedulerConfig() RetentionSchedulerConfig {
	return RetentionSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		Timeout:    10 * time.Minute,
		RunOnStart: true,
	}
}

// RetentionScheduler periodically purges print jobs older than the retention period
type RetentionScheduler struct {
	cleaner   Cleaner
	logger    *zap.Logger
	config    RetentionSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	removed   int
}

// NewRetentionScheduler creates a new retention scheduler
func NewRetentionScheduler(cleaner Cleaner, logger *zap.Logger, config RetentionSchedulerConfig) *RetentionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionScheduler{
		cleaner: cleaner,
		logger:  logger,
		config:  config,
	}
}

// Start starts the cleanup loop
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Retention scheduler is disabled")
		return nil
	}
	if s.config.Interval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Retention scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *RetentionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

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
		s.logger.Info("Retention scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Retention scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *RetentionScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *RetentionScheduler) execute(ctx context.Context) {
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	removed, err := s.cleaner.CleanupExpired(runCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Print job cleanup failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.lastRun = startTime
	s.removed += removed
	s.mu.Unlock()

	s.logger.Debug("Print job cleanup completed",
		zap.Duration("duration", duration),
		zap.Int("removed", removed),
	)
}

// TriggerImmediateCleanup runs a cleanup now, outside the regular schedule
func (s *RetentionScheduler) TriggerImmediateCleanup(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Stats returns the time of the last successful run and the total jobs removed
func (s *RetentionScheduler) Stats() (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.removed
}
