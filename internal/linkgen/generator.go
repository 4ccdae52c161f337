// Package linkgen renders link bodies for vault files in the user's preferred
// style (wikilink or Markdown) and path format.
package linkgen

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/localref/internal/apperr"
	"github.com/starford/localref/internal/models"
)

// Link styles.
const (
	StyleWikilink = "wikilink"
	StyleMarkdown = "markdown"
)

// Path formats.
const (
	PathShortest = "shortest"
	PathRelative = "relative"
	PathAbsolute = "absolute"
)

// wikilinkReserved are the characters that end or split a wikilink target.
const wikilinkReserved = "[]|#^"

// Options selects the link style and how the target path is written.
type Options struct {
	Style      string `yaml:"style"`
	PathFormat string `yaml:"path_format"`
}

// Lister is the slice of storage.Provider the shortest path format needs.
type Lister interface {
	List(dir string) ([]models.FileMetadata, error)
}

// Generator implements attach.LinkGenerator.
type Generator struct {
	opts  Options
	files Lister
}

// New creates a generator. Empty options fall back to wikilinks with the
// shortest unambiguous path.
func New(opts Options, files Lister) *Generator {
	if opts.Style == "" {
		opts.Style = StyleWikilink
	}
	if opts.PathFormat == "" {
		opts.PathFormat = PathShortest
	}
	return &Generator{opts: opts, files: files}
}

// GenerateLink returns the link body for target as seen from documentPath.
func (g *Generator) GenerateLink(target models.Destination, documentPath string) (string, error) {
	linkPath, err := g.linkPath(target.Path, documentPath)
	if err != nil {
		return "", err
	}

	switch g.opts.Style {
	case StyleWikilink:
		if strings.ContainsAny(linkPath, wikilinkReserved) {
			return "", fmt.Errorf("%w: %q cannot be written as a wikilink", apperr.ErrLinkGeneration, linkPath)
		}
		return "[[" + strings.TrimSuffix(linkPath, ".md") + "]]", nil
	case StyleMarkdown:
		display := strings.TrimSuffix(path.Base(target.Path), ".md")
		return "[" + display + "](" + (&url.URL{Path: linkPath}).EscapedPath() + ")", nil
	default:
		return "", fmt.Errorf("%w: unknown link style %q", apperr.ErrLinkGeneration, g.opts.Style)
	}
}

func (g *Generator) linkPath(target, documentPath string) (string, error) {
	switch g.opts.PathFormat {
	case PathAbsolute:
		return target, nil
	case PathRelative:
		return relativeTo(path.Dir(documentPath), target)
	case PathShortest:
		unique, err := g.uniqueBaseName(target)
		if err != nil {
			return "", err
		}
		if unique {
			return path.Base(target), nil
		}
		return target, nil
	default:
		return "", fmt.Errorf("%w: unknown path format %q", apperr.ErrLinkGeneration, g.opts.PathFormat)
	}
}

// uniqueBaseName reports whether no other vault file shares target's base
// name (case-insensitive).
func (g *Generator) uniqueBaseName(target string) (bool, error) {
	if g.files == nil {
		return true, nil
	}
	files, err := g.files.List("")
	if err != nil {
		return false, fmt.Errorf("%w: list vault: %w", apperr.ErrLinkGeneration, err)
	}
	base := strings.ToLower(path.Base(target))
	for _, f := range files {
		if f.Path != target && strings.ToLower(path.Base(f.Path)) == base {
			return false, nil
		}
	}
	return true, nil
}

func relativeTo(fromDir, target string) (string, error) {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrLinkGeneration, err)
	}
	return filepath.ToSlash(rel), nil
}
