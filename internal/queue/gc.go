package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const purgeTimeout = 2 * time.Minute

// GarbageCollector drops dead-lettered jobs once they outlive the retention window.
// A failed job sits in the DLQ for inspection until then.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	purged  int
	lastRun time.Time
}

// NewGarbageCollector creates a collector. A nil purger makes every pass a no-op.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Start purges once immediately, then every interval until ctx is done.
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.runLogged(ctx)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			gc.runLogged(ctx)
		}
	}
}

// Stats returns the total jobs purged and when the last pass finished
func (gc *GarbageCollector) Stats() (int, time.Time) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.purged, gc.lastRun
}

func (gc *GarbageCollector) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := gc.RunOnce(ctx); err != nil {
		gc.logger.Error("dlq_gc_failed", zap.Duration("retention", gc.retention), zap.Error(err))
	}
}

// RunOnce performs a single purge pass and returns how many jobs were dropped
func (gc *GarbageCollector) RunOnce(ctx context.Context) (int, error) {
	if gc.purger == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)

	gc.mu.Lock()
	gc.purged += n
	gc.lastRun = time.Now()
	gc.mu.Unlock()

	if err != nil {
		return n, fmt.Errorf("DLQ purge: %w", err)
	}
	if n > 0 {
		gc.logger.Info("dlq_gc_purged", zap.Int("count", n), zap.Duration("retention", gc.retention))
	}
	return n, nil
}
