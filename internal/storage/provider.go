// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/localref/internal/models"

// Provider is the interface for vault file operations. Vault paths are
// relative to the root and slash separated.
type Provider interface {
	// Root returns the absolute vault directory.
	Root() string
	// List returns metadata for every regular file under dir, skipping
	// dot-directories and temp files.
	List(dir string) ([]models.FileMetadata, error)
	// Exists reports whether path is taken in the vault.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
	// Create writes a new file and fails with apperr.ErrAlreadyExists
	// if path is already taken. It never overwrites.
	Create(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Folder returns the attachment allocator for dir.
	Folder(dir string) *Folder
	// SourceExists reports whether an absolute path outside the vault exists.
	SourceExists(abs string) bool
	// ReadSource reads an absolute path outside the vault.
	ReadSource(abs string) ([]byte, error)
}

var _ Provider = (*FS)(nil)
