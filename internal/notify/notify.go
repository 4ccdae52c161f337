// Package notify delivers short user-facing notices.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Levels.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Notice is one transient message for the user.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Info builds an info notice.
func Info(format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Message: fmt.Sprintf(format, args...)}
}

// Error builds an error notice.
func Error(format string, args ...any) Notice {
	return Notice{Level: LevelError, Message: fmt.Sprintf(format, args...)}
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f.
func (f Func) Notify(n Notice) { f(n) }

// Writer prints one notice per line.
type Writer struct {
	mu sync.Mutex
	W  io.Writer
}

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{W: w}
}

// Notify prints n.
func (w *Writer) Notify(n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.W, n.Message)
}

// Log forwards notices to a slog logger.
type Log struct {
	Logger *slog.Logger
}

// Notify logs n at the matching level.
func (l Log) Notify(n Notice) {
	if n.Level == LevelError {
		l.Logger.Error("notice", slog.String("message", n.Message))
		return
	}
	l.Logger.Info("notice", slog.String("message", n.Message))
}

// Multi fans a notice out to several notifiers. Nil entries are skipped.
type Multi []Notifier

// Notify delivers n to every notifier.
func (m Multi) Notify(n Notice) {
	for _, nf := range m {
		if nf != nil {
			nf.Notify(n)
		}
	}
}

// Discard drops notices.
var Discard Notifier = Func(func(Notice) {})

// Recorder keeps notices in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify records n.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
