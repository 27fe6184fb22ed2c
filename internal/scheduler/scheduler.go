// Package scheduler triggers dispatcher runs on the hour inside the
// long-running server. Runs are strictly sequential: a run that overlaps the
// next tick delays it rather than running concurrently.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Config controls the tick schedule.
type Config struct {
	Interval time.Duration // 1h in production
	Offset   time.Duration // delay after the interval boundary
}

// DefaultConfig runs a few seconds past every full hour.
func DefaultConfig() Config {
	return Config{Interval: time.Hour, Offset: 5 * time.Second}
}

// NextRun returns the first boundary+offset strictly after now.
func (c Config) NextRun(now time.Time) time.Time {
	next := now.Truncate(c.Interval).Add(c.Offset)
	for !next.After(now) {
		next = next.Add(c.Interval)
	}
	return next
}

// Start calls run at every tick until ctx is cancelled. Blocks; intended to
// be called with `go` or from an errgroup.
func Start(ctx context.Context, cfg Config, run func(ctx context.Context), logger *slog.Logger) {
	if cfg.Interval <= 0 {
		cfg = DefaultConfig()
	}
	logger.Info("Dispatch scheduler started", "interval", cfg.Interval, "offset", cfg.Offset)

	timer := time.NewTimer(time.Until(cfg.NextRun(time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			run(ctx)
			timer.Reset(time.Until(cfg.NextRun(time.Now())))
		case <-ctx.Done():
			logger.Info("Dispatch scheduler stopped")
			return
		}
	}
}
