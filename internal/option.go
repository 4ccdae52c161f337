package internal

import (
	"io"
	"log/slog"

	"github.com/starford/localref/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	logger   *slog.Logger
	notifier notify.Notifier
	version  string
	errOut   io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithNotifier adds a notice sink next to the log.
func WithNotifier(n notify.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithErrorOutput sets where logs go when no logger is given.
func WithErrorOutput(w io.Writer) Option {
	return func(a *application) {
		a.errOut = w
	}
}
