package api

import (
	"bytes"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/starford/localref/internal/checksum"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Upload handles POST /api/attachments (multipart/form-data, field "file").
// The optional "document" field selects the referencing document; with
// "apply" set to false the document is left untouched.
//
//	@Summary		Upload a file and reference it from a document
//	@Tags			attachments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to upload"
//	@Param			document	formData	string	false	"Referencing document"
//	@Param			apply		formData	bool	false	"Edit the document (default true)"
//	@Success		201			{object}	InsertResponse
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/attachments [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	document := r.FormValue("document")
	apply := true
	if v := r.FormValue("apply"); v != "" {
		if apply, err = strconv.ParseBool(v); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid 'apply' value"))
			return
		}
	}

	res, err := h.deps.Service.InsertData(r.Context(), header.Filename, data, document, h.sink(document, nil, apply))
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	h.respondInserted(w, res)
}

// ServeFile handles GET /api/attachments/*.
//
//	@Summary		Download a vault file
//	@Tags			attachments
//	@Param			path	path	string	true	"Vault path"
//	@Success		200		"File content"
//	@Success		304		"Not modified (If-None-Match)"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/attachments/{path} [get]
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	p := wildcardPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.deps.Store.Read(p)
	if err != nil {
		writeError(w, "serve attachment", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(data))
	http.ServeContent(w, r, path.Base(p), time.Time{}, bytes.NewReader(data))
}
