// Package models defines the domain types for localref.
package models

import (
	"path/filepath"
	"strings"
	"time"
)

// SourceFile is a file picked from the local file system. It lives only for
// the duration of one insertion.
type SourceFile struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Ext  string `json:"ext"` // lower-cased, no leading dot
}

// NewSourceFile derives name and extension from an absolute path.
func NewSourceFile(path string) SourceFile {
	name := filepath.Base(path)
	return SourceFile{
		Path: path,
		Name: name,
		Ext:  strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
	}
}

// Destination is the chosen location of a copied file inside the vault.
type Destination struct {
	Path string `json:"path"` // vault-relative, slash separated
	Name string `json:"name"`
}

// Insertion records one completed insertion in the history index.
type Insertion struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Document    string    `json:"document"`
	Reference   string    `json:"reference"`
	Embedded    bool      `json:"embedded"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileMetadata is a lightweight listing entry for a vault file.
type FileMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
