// Package cli implements the tabdav command-line interface: one-shot
// commands (tabdav sync, tabdav add ...) and an interactive REPL when
// invoked without a command.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tabdav/tabdav/internal/config"
	"github.com/tabdav/tabdav/internal/logging"
	"github.com/tabdav/tabdav/internal/migrations"
	"github.com/tabdav/tabdav/internal/remote"
	"github.com/tabdav/tabdav/internal/services"

	_ "modernc.org/sqlite"
)

// App wires the configuration, local database and services together for
// the command handlers.
type App struct {
	cfg    *config.Config
	log    logging.Logger
	db     *sql.DB
	tabs   *services.TabService
	groups *services.GroupService
	sync   *services.SyncService
	dataIO *services.DataIO
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens (and migrates) the local database and builds the services.
// The remote store is only constructed when the configuration carries
// enough settings; everything else works offline.
func NewApp(cfg *config.Config) (*App, error) {
	log := newLogger(cfg)

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	var store remote.Store
	if cfg.IsConfigured() {
		store, err = remote.New(cfg)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		tabs:   services.NewTabService(db, log),
		groups: services.NewGroupService(db, log),
		sync:   services.NewSyncService(db, store, log),
		dataIO: services.NewDataIO(db, log),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	if cfg.LogFile != "" {
		return logging.NewRotatingFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays)
	}
	return logging.NewStderr(slog.LevelWarn)
}

// Run executes one command when args are given, otherwise starts the REPL.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.Close()

	if len(args) > 0 {
		return a.dispatch(ctx, args[0], args[1:])
	}

	fmt.Fprintln(a.out, "tabdav: synced tabs (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(os.Stdin), a.out)
	return nil
}

// Close releases the database handle.
func (a *App) Close() {
	_ = a.db.Close()
}
