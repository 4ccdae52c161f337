package refparse

import (
	"context"
	"log/slog"
	"path"

	"github.com/starford/localref/internal/attach"
	"github.com/starford/localref/internal/models"
)

// Vault is the slice of storage.Provider a scan reads through.
type Vault interface {
	Read(path string) ([]byte, error)
	List(dir string) ([]models.FileMetadata, error)
}

// ResolvedReference is a reference with its vault resolution.
type ResolvedReference struct {
	Reference
	Class string `json:"class"`
	// Resolved is the vault path the target points at, "" if missing.
	Resolved string `json:"resolved"`
}

// Report lists the references of one document.
type Report struct {
	Document   string              `json:"document"`
	Title      string              `json:"title"`
	References []ResolvedReference `json:"references"`
	Missing    []string            `json:"missing"`
}

// Scan parses a vault document and resolves each local reference against
// the vault listing.
func Scan(ctx context.Context, vault Vault, document string) (*Report, error) {
	data, err := vault.Read(document)
	if err != nil {
		return nil, err
	}
	parsed, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	listing, err := vault.List("")
	if err != nil {
		return nil, err
	}
	files := make([]string, len(listing))
	for i, f := range listing {
		files[i] = f.Path
	}

	rep := &Report{
		Document:   document,
		Title:      parsed.Title,
		References: make([]ResolvedReference, 0, len(parsed.References)),
		Missing:    []string{},
	}
	resolved := make(map[string]string)
	for _, target := range parsed.Targets() {
		r := ResolveTarget(target, document, files)
		resolved[target] = r
		if r == "" {
			rep.Missing = append(rep.Missing, target)
		}
	}
	for _, ref := range parsed.References {
		rr := ResolvedReference{
			Reference: ref,
			Class:     attach.Classify(path.Ext(ref.Target)).String(),
		}
		if !ref.External {
			rr.Resolved = resolved[ref.Target]
		}
		rep.References = append(rep.References, rr)
	}
	slog.Debug("references scanned",
		slog.String("document", document),
		slog.Int("count", len(rep.References)),
		slog.Int("missing", len(rep.Missing)))
	return rep, nil
}
