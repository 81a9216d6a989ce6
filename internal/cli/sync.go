package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/tabdav/tabdav/internal/models"
	"github.com/tabdav/tabdav/internal/services"
)

func (a *App) cmdSync(ctx context.Context) error {
	if !a.sync.IsConfigured() {
		return models.ErrNotConfigured
	}

	result := a.sync.Sync(ctx)
	if !result.Success {
		return fmt.Errorf("sync failed: %s", result.Error)
	}

	fmt.Fprintf(a.out, "Sync finished: +%d/-%d local, +%d/-%d remote",
		result.AddedToLocal, result.DeletedFromLocal,
		result.AddedToRemote, result.DeletedFromRemote)
	if result.Conflicts > 0 {
		fmt.Fprintf(a.out, ", %d conflict(s) resolved", result.Conflicts)
	}
	if result.IntegrityRepairs > 0 {
		fmt.Fprintf(a.out, ", %d reference(s) repaired", result.IntegrityRepairs)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *App) cmdStatus(ctx context.Context) error {
	md, err := a.sync.Status(ctx)
	if err != nil {
		return err
	}
	stats, err := a.tabs.Stats(ctx)
	if err != nil {
		return err
	}

	if !a.sync.IsConfigured() {
		fmt.Fprintln(a.out, "Remote:     not configured")
	} else {
		fmt.Fprintf(a.out, "Remote:     %s\n", a.cfg.RemoteBackend)
	}
	if md.LastSyncTime > 0 {
		fmt.Fprintf(a.out, "Last sync:  %s (%s)\n",
			time.UnixMilli(md.LastSyncTime).Format(time.RFC3339), md.State)
	} else {
		fmt.Fprintln(a.out, "Last sync:  never")
	}
	if md.ErrorMessage != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", md.ErrorMessage)
	}
	fmt.Fprintf(a.out, "Tabs:       %d total, %d pending, %d synced\n",
		stats.Total, stats.Pending, stats.Synced)
	return nil
}

func (a *App) cmdTestConnection(ctx context.Context) error {
	if err := a.sync.TestConnection(ctx); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	fmt.Fprintln(a.out, "Connection OK")
	return nil
}

// cmdWatch syncs on a timer until interrupted. Log output goes to the
// configured log file when set, so the terminal stays quiet.
func (a *App) cmdWatch(ctx context.Context) error {
	if !a.sync.IsConfigured() {
		return models.ErrNotConfigured
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(a.out, "Watching, syncing every %s (Ctrl-C to stop)\n", a.cfg.SyncInterval)

	watcher := services.NewWatcher(a.sync, a.cfg.SyncInterval, a.log)
	if err := watcher.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
