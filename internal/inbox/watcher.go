// Package inbox watches a drop directory and reports files that land in it.
package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is reported.
const DefaultSettle = 300 * time.Millisecond

// FileCallback receives the absolute path of a settled file.
type FileCallback func(path string)

// Watch reports every regular file created in dir (not recursive) once no
// write events have arrived for settle. Files present before the watch
// starts are ignored. Dot-files and editor temp files are skipped. It
// returns when ctx is cancelled.
func Watch(ctx context.Context, dir string, settle time.Duration, logger *slog.Logger, cb FileCallback) error {
	if settle <= 0 {
		settle = DefaultSettle
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("inbox: watching", slog.String("dir", dir))

	// pending maps a path to the time of its last event; the ticker flushes
	// entries that have been quiet for settle.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox: stopped")
			return nil

		case now := <-ticker.C:
			for p, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, p)
				info, statErr := os.Stat(p)
				if statErr != nil || !info.Mode().IsRegular() {
					continue
				}
				logger.Debug("inbox: file settled", slog.String("path", p))
				cb(p)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = time.Now()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

func ignored(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".tmp") ||
		strings.HasSuffix(name, ".part") ||
		strings.HasSuffix(name, ".crdownload")
}
