package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/insertsvc"
	"github.com/starford/localref/internal/linkgen"
	"github.com/starford/localref/internal/logging"
	"github.com/starford/localref/internal/metrics"
	"github.com/starford/localref/internal/notify"
	"github.com/starford/localref/internal/settings"
	"github.com/starford/localref/internal/storage"
)

// Components are the wired core shared by every front end.
type Components struct {
	Config   *Config
	Logger   *slog.Logger
	Store    *storage.FS
	History  *index.DB
	Links    *linkgen.Generator
	Settings *settings.Store
	Service  *insertsvc.Service
}

// Open builds the components for cfg. Notices go to the log and to
// notifier when non-nil; rec may be nil.
func Open(cfg *Config, logger *slog.Logger, notifier notify.Notifier, rec metrics.Recorder) (*Components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	notices := notify.Notifier(notify.Log{Logger: logger})
	if notifier != nil {
		notices = notify.Multi{notices, notifier}
	}
	if rec == nil {
		rec = metrics.Noop{}
	}

	links := linkgen.New(cfg.Links, store)
	svc := insertsvc.NewService(store, links,
		insertsvc.WithAttachmentDir(cfg.Vault.AttachmentDir),
		insertsvc.WithHistory(db),
		insertsvc.WithNotifier(notices),
		insertsvc.WithMetrics(rec),
		insertsvc.WithLogger(logger),
	)

	return &Components{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		History:  db,
		Links:    links,
		Settings: settings.NewStore(cfg.Settings.Path),
		Service:  svc,
	}, nil
}

// DefaultDir returns the picker's starting directory from the user
// settings, or "" (home) when unset or unreadable.
func (c *Components) DefaultDir() string {
	s, err := c.Settings.Load()
	if err != nil {
		c.Logger.Warn("settings load failed", slog.String("error", err.Error()))
		return ""
	}
	return s.DefaultPath
}

// Close releases the history database.
func (c *Components) Close() error {
	return c.History.Close()
}

// setup applies opts and returns the application with a logger.
func setup(opts []Option) (*application, error) {
	app := &application{errOut: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, errors.New("config is required")
	}
	if app.logger == nil {
		logger, err := logging.New(app.errOut, app.config.App.LogLevel, app.config.App.LogFormat)
		if err != nil {
			return nil, err
		}
		app.logger = logger
	}
	return app, nil
}

// OpenComponents applies opts and opens the components without metrics.
// CLI commands use it for one-shot work.
func OpenComponents(opts ...Option) (*Components, error) {
	app, err := setup(opts)
	if err != nil {
		return nil, err
	}
	return Open(app.config, app.logger, app.notifier, nil)
}
