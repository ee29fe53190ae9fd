package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lubosr/linuxconfig-toolkit/internal/ports"
)

// Scheduler registers the recurring toolkit jobs with the cron driver.
type Scheduler struct {
	driver    ports.Scheduler
	tracker   *Tracker
	attention *AttentionFinder
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring jobs.
func NewScheduler(driver ports.Scheduler, tracker *Tracker, attention *AttentionFinder, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, tracker: tracker, attention: attention, logger: logger}
}

// Start registers both jobs and starts the driver.
func (s *Scheduler) Start(ctx context.Context, trackerSpec, attentionSpec string) error {
	if s.driver == nil {
		return nil
	}

	if s.tracker != nil && trackerSpec != "" {
		err := s.driver.Schedule(trackerSpec, func() {
			if err := s.tracker.Run(ctx); err != nil {
				s.logger.Error("tracker run failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule tracker: %w", err)
		}
	}

	if s.attention != nil && attentionSpec != "" {
		err := s.driver.Schedule(attentionSpec, func() {
			if err := s.attention.Run(ctx); err != nil {
				s.logger.Error("attention run failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule attention finder: %w", err)
		}
	}

	s.driver.Start()
	return nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
