// Package picker supplies source file paths for an insertion. A cancelled
// or failed pick is reported as no selection.
package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/localref/internal/apperr"
)

// Picker returns absolute paths chosen by the user, or nil for no selection.
type Picker interface {
	Pick(ctx context.Context) []string
}

// Func adapts a function to Picker.
type Func func(ctx context.Context) []string

// Pick calls f.
func (f Func) Pick(ctx context.Context) []string { return f(ctx) }

// Static returns fixed paths (command-line arguments, API request fields).
// Relative paths are resolved against DefaultDir.
type Static struct {
	Paths      []string
	DefaultDir string
}

// Pick resolves the configured paths.
func (s Static) Pick(_ context.Context) []string {
	var out []string
	for _, p := range s.Paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, Resolve(p, s.DefaultDir))
	}
	return out
}

// Prompt asks for a path on a line-oriented terminal. An empty line or EOF
// cancels.
type Prompt struct {
	In         io.Reader
	Out        io.Writer
	DefaultDir string
	Logger     *slog.Logger
}

// Pick prints the prompt and reads one line. A cancelled ctx returns at
// once, but the reading goroutine stays blocked on In until a line or EOF
// arrives. That is fine for a one-shot CLI; long-lived callers should close
// In or use Static.
func (p Prompt) Pick(ctx context.Context) []string {
	dir := p.DefaultDir
	if dir == "" {
		dir = homeDir()
	}
	fmt.Fprintf(p.Out, "Select a file to insert [%s]: ", dir)

	lines := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(p.In)
		if sc.Scan() {
			lines <- sc.Text()
			return
		}
		if err := sc.Err(); err != nil && p.Logger != nil {
			p.Logger.Warn("picker: read failed", slog.String("error", err.Error()))
		}
		close(lines)
	}()

	select {
	case <-ctx.Done():
		return nil
	case line, ok := <-lines:
		line = strings.TrimSpace(line)
		if !ok || line == "" {
			return nil
		}
		return []string{Resolve(line, dir)}
	}
}

// Confine returns paths unchanged when each lies inside root after symlinks
// are resolved, and an error wrapping apperr.ErrForbidden otherwise. An
// empty root allows no paths.
func Confine(root string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return paths, nil
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: no default source directory is set", apperr.ErrForbidden)
	}
	base := canonical(Resolve(root, "/"))
	for _, p := range paths {
		rel, err := filepath.Rel(base, canonical(p))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%w: %s is outside %s", apperr.ErrForbidden, p, root)
		}
	}
	return paths, nil
}

// canonical resolves symlinks in p. For a missing file only the parent is
// resolved so the not-found error surfaces later.
func canonical(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	if r, err := filepath.EvalSymlinks(filepath.Dir(p)); err == nil {
		return filepath.Join(r, filepath.Base(p))
	}
	return filepath.Clean(p)
}

// Resolve expands "~/" and makes p absolute relative to dir (or the home
// directory when dir is empty).
func Resolve(p, dir string) string {
	p = strings.TrimSpace(p)
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		p = filepath.Join(homeDir(), p[2:])
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if dir == "" {
		dir = homeDir()
	}
	return filepath.Join(Resolve(dir, "/"), p)
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return string(filepath.Separator)
}
