package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler triggers a cycle at a fixed interval. A tick that lands while a
// cycle is still running is skipped; ticks never queue up.
type Scheduler struct {
	coordinator *Coordinator
	interval    time.Duration
}

func NewScheduler(c *Coordinator, interval time.Duration) *Scheduler {
	return &Scheduler{coordinator: c, interval: interval}
}

// Run blocks until ctx is cancelled, running one cycle per interval. The
// first cycle fires after one full interval, not at startup.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("agent scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("agent scheduler stopped")
			return
		case <-ticker.C:
			if err := s.coordinator.RunCycle(ctx); err != nil {
				if errors.Is(err, ErrRunInProgress) {
					slog.Warn("skipping scheduled cycle, previous cycle still running")
					continue
				}
				slog.Error("scheduled cycle failed", "error", err)
			}
		}
	}
}
