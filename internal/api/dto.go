package api

import (
	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/insertsvc"
	"github.com/starford/localref/internal/models"
)

// InsertRequest is the request body for POST /api/insert.
type InsertRequest struct {
	// Path is the local file to insert. Paths is accepted as an alternative;
	// only the first entry is used.
	Path     string   `json:"path,omitempty" example:"/home/me/Pictures/photo.png"`
	Paths    []string `json:"paths,omitempty"`
	Document string   `json:"document" example:"notes/day.md" validate:"required"`
	// Selection is the byte range to replace; omitted appends.
	Selection *editor.Selection `json:"selection,omitempty"`
	// Apply edits the document in the vault. When false the reference is
	// only returned.
	Apply *bool `json:"apply,omitempty"`
}

func (r InsertRequest) paths() []string {
	if r.Path != "" {
		return append([]string{r.Path}, r.Paths...)
	}
	return r.Paths
}

func (r InsertRequest) apply() bool { return r.Apply == nil || *r.Apply }

// InsertResponse is returned after a successful insertion or upload.
type InsertResponse struct {
	*insertsvc.Result
	URL string `json:"url" example:"/api/attachments/attachments/photo.png"`
}

// ClassifyResponse describes how a file name would be referenced.
type ClassifyResponse struct {
	Name       string `json:"name" example:"photo.JPG"`
	Ext        string `json:"ext" example:"jpg"`
	Class      string `json:"class" example:"embeddable"`
	Embeddable bool   `json:"embeddable"`
}

// ExtensionsResponse lists the embeddable extensions.
type ExtensionsResponse struct {
	Embeddable []string `json:"embeddable"`
}

// InsertionListResponse wraps paginated history listings.
type InsertionListResponse struct {
	Insertions []models.Insertion `json:"insertions" validate:"required"`
	Total      int                `json:"total" example:"42" validate:"required"`
}
