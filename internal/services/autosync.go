package services

import (
	"context"
	"time"

	"github.com/tabdav/tabdav/internal/logging"
)

// Watcher runs periodic syncs until its context is cancelled. An overdue
// run that is still in flight when the ticker fires is skipped by the sync
// guard rather than queued.
type Watcher struct {
	sync     *SyncService
	interval time.Duration
	log      logging.Logger
}

// NewWatcher returns a Watcher ticking at the given interval.
func NewWatcher(sync *SyncService, interval time.Duration, log logging.Logger) *Watcher {
	return &Watcher{sync: sync, interval: interval, log: log}
}

// Run executes one sync immediately, then one per interval. It returns the
// context error when cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info(ctx, "watch mode started", "interval", w.interval)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info(ctx, "watch mode stopped")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	result := w.sync.Sync(ctx)
	if !result.Success {
		w.log.Warn(ctx, "periodic sync failed", "error", result.Error)
	}
}
