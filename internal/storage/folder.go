package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/starford/localref/internal/apperr"
)

// maxCandidates bounds the "name N.ext" probe.
const maxCandidates = 10000

// Folder allocates attachment paths inside one vault directory.
type Folder struct {
	fs  *FS
	dir string
}

// AvailablePath returns a vault path under the folder that does not exist
// yet: name itself if free, otherwise "stem 1.ext", "stem 2.ext", and so on.
// It does not create anything.
func (f *Folder) AvailablePath(name string) (string, error) {
	base, err := f.fs.safePath(f.dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrDestinationUnavailable, err)
	}
	if info, statErr := os.Stat(base); statErr == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", apperr.ErrDestinationUnavailable, f.dir)
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	candidate := name
	for i := 1; i <= maxCandidates; i++ {
		rel := path.Join(f.dir, candidate)
		abs, err := f.fs.safePath(rel)
		if err != nil {
			return "", fmt.Errorf("%w: %w", apperr.ErrDestinationUnavailable, err)
		}
		_, err = os.Lstat(abs)
		if errors.Is(err, fs.ErrNotExist) {
			return rel, nil
		}
		if err != nil {
			return "", fmt.Errorf("%w: stat %s: %w", apperr.ErrDestinationUnavailable, rel, err)
		}
		candidate = fmt.Sprintf("%s %d%s", stem, i, ext)
	}
	return "", fmt.Errorf("%w: no free name for %q in %q", apperr.ErrDestinationUnavailable, name, f.dir)
}
