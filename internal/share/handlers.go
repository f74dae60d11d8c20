package share

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brodal/ratatosk/internal/apperr"
	"github.com/brodal/ratatosk/internal/search"
)

// Handler serves the public share-search API.
type Handler struct {
	svc *search.Service
}

// NewHandler creates a share handler over the search service.
func NewHandler(svc *search.Service) *Handler {
	return &Handler{svc: svc}
}

// NewRouter mounts the share API routes. The share surface carries no app
// authentication; access is decided per note by credential labels.
func NewRouter(svc *search.Service) chi.Router {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/notes", h.SearchNotes)
	return r
}

// SearchResult is one hit exposed to the public surface. ID is the share
// alias when the note has one, never leaking the internal ID unnecessarily.
type SearchResult struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Path  string  `json:"path"`
}

// SearchResponse wraps share search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchNotes handles GET /share/api/notes?ancestorNoteId=<id>&search=<query>.
//
// Responses: 400 for a blank search parameter, 403 when the share index is
// requested while disabled, 401 (with WWW-Authenticate) when credentials
// are required and absent or wrong, 404 for unknown or unshared ancestors.
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("search"))
	ancestor := strings.TrimSpace(q.Get("ancestorNoteId"))

	if query == "" {
		writeMessage(w, http.StatusBadRequest, "'search' parameter is required")
		return
	}

	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		slog.Error("share search: snapshot", slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	// An omitted ancestor addresses the share index itself, which must be
	// explicitly enabled.
	if ancestor == "" {
		if errors.Is(IndexAccessible(snap), apperr.ErrShareDisabled) {
			writeMessage(w, http.StatusForbidden, "share index is not enabled")
			return
		}
		ancestor = RootID(snap)
	}

	ancestorID, err := ResolveNote(snap, ancestor)
	if err != nil {
		if ancestor == RootID(snap) && IndexAccessible(snap) != nil {
			writeMessage(w, http.StatusForbidden, "share index is not enabled")
			return
		}
		// Not found and not accessible are indistinguishable on purpose.
		writeMessage(w, http.StatusNotFound, "note not found")
		return
	}
	if ancestorID == RootID(snap) && IndexAccessible(snap) != nil {
		writeMessage(w, http.StatusForbidden, "share index is not enabled")
		return
	}

	if err := CheckCredentials(snap, ancestorID, r); err != nil {
		if errors.Is(err, apperr.ErrAccessDenied) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ratatosk-share"`)
			writeMessage(w, http.StatusUnauthorized, "credentials required")
			return
		}
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	// The share subtree normally lives inside the hidden tree, so hidden
	// filtering must be off here; the ancestor scope already bounds what
	// is reachable.
	sc := search.NewContext(search.Options{
		AncestorNoteID:     ancestorID,
		IgnoreHoistedNote:  true,
		IncludeHiddenNotes: true,
		Limit:              limit,
	}, "")

	results, err := h.svc.FindResultsWithQuery(r.Context(), query, sc)
	if err != nil {
		slog.Error("share search failed", slog.String("query", query), slog.String("error", err.Error()))
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]SearchResult, 0, len(results))
	for _, res := range results {
		if res.NoteID == ancestorID {
			continue
		}
		// Each result note re-checks credentials independently: a
		// descendant can carry its own labels distinct from its
		// ancestor's. Unauthorized hits are dropped, not surfaced.
		if CheckCredentials(snap, res.NoteID, r) != nil {
			continue
		}
		n := snap.GetNote(res.NoteID)
		if n == nil {
			continue
		}
		out = append(out, SearchResult{
			ID:    ShareID(snap, res.NoteID),
			Title: n.Title,
			Score: res.Score,
			Path:  BreadcrumbPath(snap, ancestorID, res.NoteID),
		})
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: out})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
