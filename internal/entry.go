// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/localref/internal/api"
	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/metrics"
	"github.com/starford/localref/internal/notify"
	"github.com/starford/localref/internal/sse"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := setup(opts)
	if err != nil {
		return err
	}
	cfg, logger := app.config, app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("attachment_dir", cfg.Vault.AttachmentDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if !cfg.Auth.AuthEnabled() && !cfg.App.HTTP.Loopback() {
		logger.Warn("HTTP API is reachable from the network without auth; set auth.mode: token",
			slog.String("http_address", cfg.App.HTTP.Address()))
	}

	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	var notices notify.Notifier = broker
	if app.notifier != nil {
		notices = notify.Multi{broker, app.notifier}
	}
	rec := metrics.NewPrometheus(nil)

	comps, err := Open(cfg, logger, notices, rec)
	if err != nil {
		return err
	}
	defer comps.Close()
	logger.Info("Vault opened", slog.String("root", comps.Store.Root()))

	// Drop history rows whose copies were deleted while we were down.
	if n, err := index.Prune(comps.History, comps.Store, logger); err != nil {
		logger.Warn("initial prune failed", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("pruned stale history", slog.Int("removed", n))
	}

	apiRouter := api.NewRouter(api.NewHandler(api.Deps{
		Service:    comps.Service,
		Store:      comps.Store,
		History:    comps.History,
		Events:     broker,
		DefaultDir: comps.DefaultDir,
	}), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := comps.History.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", rec.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Inbox.Dir != "" && cfg.Inbox.Document != "" {
		g.Go(func() error {
			return watchInbox(gCtx, comps)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		waitForShutdown(gCtx, logger)

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels sibling goroutines once a shutdown was requested.
var errShutdown = errors.New("shutdown requested")

// waitForShutdown blocks until SIGINT/SIGTERM or ctx is done.
func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
