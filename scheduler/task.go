package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the periodic task in a loop, respecting the initial delay and context cancellation
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *zap.SugaredLogger) {
	log := logger.With("task", pt.name)

	if pt.initialDelay > 0 {
		log.Debugw("waiting for initial delay", "delay", pt.initialDelay)
		timer := time.NewTimer(pt.initialDelay)
		select {
		case <-timer.C:
			pt.runFunc()
		case <-ctx.Done():
			timer.Stop()
			log.Debug("stopped during initial delay due to context cancellation")
			return
		case <-stopChan:
			timer.Stop()
			log.Debug("stopped during initial delay due to stop signal")
			return
		}
	} else {
		pt.runFunc()
	}

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	log.Infow("periodic task started", "interval", pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			log.Info("stopped due to context cancellation")
			return
		case <-stopChan:
			log.Info("stopped due to stop signal")
			return
		}
	}
}

// initialDelay aligns the first run to the next multiple of interval past the hour.
// An interval of an hour or more aligns to the top of the next hour.
func initialDelay(now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	if interval > time.Hour {
		interval = time.Hour
	}
	top := now.Truncate(time.Hour)
	elapsed := now.Sub(top)
	next := (elapsed/interval + 1) * interval
	return next - elapsed
}
