package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/localref/internal/attach"
	"github.com/starford/localref/internal/editor"
	"github.com/starford/localref/internal/index"
	"github.com/starford/localref/internal/insertsvc"
	"github.com/starford/localref/internal/models"
	"github.com/starford/localref/internal/picker"
	"github.com/starford/localref/internal/refparse"
	"github.com/starford/localref/internal/sse"
	"github.com/starford/localref/internal/storage"
)

// Publisher receives completed insertions.
type Publisher interface {
	PublishInsertion(ev sse.InsertionEvent)
}

// Deps are the collaborators the handlers use. History, Events and
// DefaultDir are optional.
type Deps struct {
	Service *insertsvc.Service
	Store   storage.Provider
	History index.History
	Events  Publisher
	// DefaultDir resolves relative source paths.
	DefaultDir func() string
}

// Handler holds API route handlers.
type Handler struct {
	deps Deps
}

// NewHandler creates a new Handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// wildcardPath extracts the vault path after the route prefix.
// Supports encoded slashes from OpenAPI clients (e.g. notes%2Fday.md).
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func (h *Handler) defaultDir() string {
	if h.deps.DefaultDir == nil {
		return ""
	}
	return h.deps.DefaultDir()
}

func (h *Handler) sink(document string, sel *editor.Selection, apply bool) editor.Sink {
	if !apply || document == "" {
		return &editor.Capture{}
	}
	s := editor.EndOfDocument
	if sel != nil {
		s = *sel
	}
	return &editor.Document{Store: h.deps.Store, Path: document, Selection: s}
}

func (h *Handler) respondInserted(w http.ResponseWriter, res *insertsvc.Result) {
	if h.deps.Events != nil {
		h.deps.Events.PublishInsertion(sse.InsertionEvent{
			Destination: res.Destination.Path,
			Document:    res.Document,
			Reference:   res.Reference,
		})
	}
	writeJSON(w, http.StatusCreated, InsertResponse{
		Result: res,
		URL:    "/api/attachments/" + res.Destination.Path,
	})
}

// Insert handles POST /api/insert.
//
//	@Summary		Copy a local file into the vault and reference it from a document
//	@Tags			insert
//	@Accept			json
//	@Produce		json
//	@Param			body	body		InsertRequest	true	"File and document"
//	@Success		201		{object}	InsertResponse
//	@Success		204		"No file selected"
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse	"Source outside default_path, or default_path unset"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insert [post]
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req InsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Document == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("document is required"))
		return
	}

	// Over HTTP the caller names the source file, so it must come from the
	// user's default directory.
	root := h.defaultDir()
	paths, err := picker.Confine(root, picker.Static{Paths: req.paths(), DefaultDir: root}.Pick(r.Context()))
	if err != nil {
		writeError(w, "insert", err)
		return
	}
	p := picker.Static{Paths: paths}
	res, err := h.deps.Service.Insert(r.Context(), p, req.Document, h.sink(req.Document, req.Selection, req.apply()))
	if err != nil {
		writeError(w, "insert", err)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.respondInserted(w, res)
}

// Classify handles GET /api/classify.
//
//	@Summary		Classify a file name as embeddable or linkable
//	@Tags			insert
//	@Produce		json
//	@Param			name	query		string	false	"File name; omitted lists embeddable extensions"
//	@Success		200		{object}	ClassifyResponse
//	@Security		BearerAuth
//	@Router			/classify [get]
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusOK, ExtensionsResponse{Embeddable: attach.EmbeddableExtensions()})
		return
	}
	ext := models.NewSourceFile(name).Ext
	class := attach.Classify(ext)
	writeJSON(w, http.StatusOK, ClassifyResponse{
		Name:       name,
		Ext:        ext,
		Class:      class.String(),
		Embeddable: class == attach.Embeddable,
	})
}

// ListInsertions handles GET /api/insertions.
//
//	@Summary		List recorded insertions, newest first
//	@Tags			history
//	@Produce		json
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Param			document	query		string	false	"Filter by document"
//	@Success		200			{object}	InsertionListResponse
//	@Security		BearerAuth
//	@Router			/insertions [get]
func (h *Handler) ListInsertions(w http.ResponseWriter, r *http.Request) {
	if !h.requireHistory(w) {
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.deps.History.ListInsertions(limit, offset, q.Get("document"))
	if err != nil {
		writeError(w, "list insertions", err)
		return
	}
	if items == nil {
		items = []models.Insertion{}
	}
	writeJSON(w, http.StatusOK, InsertionListResponse{Insertions: items, Total: total})
}

// GetInsertion handles GET /api/insertions/{id}.
//
//	@Summary		Get one recorded insertion
//	@Tags			history
//	@Produce		json
//	@Param			id	path		int	true	"Insertion ID"
//	@Success		200	{object}	models.Insertion
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insertions/{id} [get]
func (h *Handler) GetInsertion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.insertionID(w, r)
	if !ok {
		return
	}
	in, err := h.deps.History.GetInsertion(id)
	if err != nil {
		writeError(w, "get insertion", err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// DeleteInsertion handles DELETE /api/insertions/{id}. With purge=true the
// copied file is removed from the vault as well; references to it in
// documents are left alone.
//
//	@Summary		Forget a recorded insertion
//	@Tags			history
//	@Param			id		path	int		true	"Insertion ID"
//	@Param			purge	query	bool	false	"Also delete the vault copy"
//	@Success		204		"Record deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insertions/{id} [delete]
func (h *Handler) DeleteInsertion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.insertionID(w, r)
	if !ok {
		return
	}
	if purge, _ := strconv.ParseBool(r.URL.Query().Get("purge")); purge {
		in, err := h.deps.History.GetInsertion(id)
		if err != nil {
			writeError(w, "delete insertion", err)
			return
		}
		if err := h.deps.Store.Delete(in.Destination); err != nil && !errors.Is(err, fs.ErrNotExist) {
			writeError(w, "delete attachment", err)
			return
		}
	}
	if err := h.deps.History.DeleteInsertion(id); err != nil {
		writeError(w, "delete insertion", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireHistory(w http.ResponseWriter) bool {
	if h.deps.History == nil {
		writeJSON(w, http.StatusNotFound, errorBody("history is disabled"))
		return false
	}
	return true
}

func (h *Handler) insertionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if !h.requireHistory(w) {
		return 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid id"))
		return 0, false
	}
	return id, true
}

// References handles GET /api/references/*.
//
//	@Summary		List the file references in a document
//	@Tags			references
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	refparse.Report
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/references/{path} [get]
func (h *Handler) References(w http.ResponseWriter, r *http.Request) {
	doc := wildcardPath(r)
	if doc == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	resp, err := refparse.Scan(r.Context(), h.deps.Store, doc)
	if err != nil {
		writeError(w, "references", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
