package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/livinlefevreloca/stockroom/internal/config"
	"github.com/livinlefevreloca/stockroom/internal/db"
	"github.com/livinlefevreloca/stockroom/internal/dispatch"
	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/inventory"
	"github.com/livinlefevreloca/stockroom/internal/queue"
	"github.com/livinlefevreloca/stockroom/internal/syncer"
)

// App holds the wired components for one CLI invocation
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *queue.Store
	Controller *dispatch.Controller
	Syncer     *syncer.Syncer

	database *db.DB
}

// NewApp opens storage, loads the pending queue and wires the core.
// gw overrides the HTTP gateway when non-nil.
func NewApp(ctx context.Context, cfg *config.Config, gw gateway.Gateway, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	logger.Debug("opening database", "driver", cfg.Database.Driver, "dsn", cfg.Database.DSN)
	database, err := db.OpenWithConfig(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open queue database", err)
	}
	app.database = database

	if gw == nil {
		client, err := gateway.NewClient(cfg.Gateway, logger)
		if err != nil {
			app.Close()
			return nil, WrapExitError(ExitCommandError, "invalid gateway configuration", err)
		}
		gw = client
	}

	app.Store = queue.NewStore(db.NewSlotStore(database), cfg.Queue.Slot, logger)
	app.Store.Load(ctx)

	s, err := syncer.NewSyncer(cfg.Syncer, gw, app.Store, logger)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "invalid syncer configuration", err)
	}
	app.Syncer = s
	app.Controller = dispatch.NewController(gw, app.Store, logger)

	return app, nil
}

// Service builds the inventory flows on top of the core
func (a *App) Service(scanner inventory.Scanner, prompter inventory.Prompter) *inventory.Service {
	return inventory.NewService(a.Controller, a.Syncer, scanner, prompter, a.Logger)
}

// Close releases the database
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}

// newLogger builds the process logger from the logging config
func newLogger(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
