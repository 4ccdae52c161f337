package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/inbox"
	"github.com/starford/localref/internal/picker"
)

// RunWatch inserts every file dropped into the inbox directory into the
// inbox document until ctx is cancelled or a signal arrives.
func RunWatch(ctx context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if cfg.Inbox.Dir == "" || cfg.Inbox.Document == "" {
		return errors.New("watch: inbox.dir and inbox.document are required")
	}
	if err := os.MkdirAll(cfg.Inbox.Dir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}

	comps, err := Open(cfg, app.logger, app.notifier, nil)
	if err != nil {
		return err
	}
	defer comps.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watchInbox(gCtx, comps)
	})
	g.Go(func() error {
		waitForShutdown(gCtx, app.logger)
		return errShutdown
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

// watchInbox appends a reference to each settled inbox file on its own line
// of the inbox document. A failed insertion is reported and watching goes
// on.
func watchInbox(ctx context.Context, comps *Components) error {
	cfg := comps.Config.Inbox
	sink := &editor.Appender{Store: comps.Store, Path: cfg.Document}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return fmt.Errorf("inbox dir: %w", err)
	}

	return inbox.Watch(ctx, dir, cfg.Settle, comps.Logger, func(path string) {
		res, err := comps.Service.Insert(ctx, picker.Static{Paths: []string{path}}, cfg.Document, sink)
		if err != nil {
			return
		}
		if res != nil {
			comps.Logger.Debug("inbox: inserted",
				slog.String("file", path),
				slog.String("destination", res.Destination.Path))
		}
	})
}
