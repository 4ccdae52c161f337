package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/insert", h.Insert)
	r.Get("/classify", h.Classify)

	r.Post("/attachments", h.Upload)
	r.Get("/attachments/*", h.ServeFile)

	r.Get("/insertions", h.ListInsertions)
	r.Get("/insertions/{id}", h.GetInsertion)
	r.Delete("/insertions/{id}", h.DeleteInsertion)

	r.Get("/references/*", h.References)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
