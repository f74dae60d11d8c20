package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brodal/ratatosk/internal/search"
)

// NewRouter creates a chi router with all internal API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *search.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Search.
	r.Get("/search", h.Search)

	// Note lookups.
	r.Get("/notes/{noteId}", h.GetNote)
	r.Get("/notes/{noteId}/backlinks", h.Backlinks)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
