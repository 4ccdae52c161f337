package attach

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/models"
)

// PathAllocator hands out a vault path that does not exist yet. Failures
// wrap apperr.ErrDestinationUnavailable.
type PathAllocator interface {
	AvailablePath(name string) (string, error)
}

// Resolve picks the destination for desiredName. It adds no locking of its
// own and does not create the file; allocator errors are returned as-is.
func Resolve(desiredName string, root PathAllocator) (models.Destination, error) {
	if err := validateName(desiredName); err != nil {
		return models.Destination{}, err
	}
	p, err := root.AvailablePath(desiredName)
	if err != nil {
		return models.Destination{}, err
	}
	return models.Destination{Path: p, Name: path.Base(p)}, nil
}

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", apperr.ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", apperr.ErrInvalidName, name)
	}
	return nil
}
