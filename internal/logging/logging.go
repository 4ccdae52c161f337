// Package logging builds the application's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/log"
)

// Log formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// New returns a logger writing to w. FormatJSON uses slog's JSON handler;
// FormatText uses charmbracelet/log for human-readable terminal output.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	switch format {
	case FormatJSON, "":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	case FormatText:
		l := log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "localref",
		})
		l.SetLevel(log.Level(level))
		return slog.New(l), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
}
