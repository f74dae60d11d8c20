package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brodal/ratatosk/internal/search"
)

// Handler holds API route handlers.
type Handler struct {
	svc *search.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *search.Service) *Handler {
	return &Handler{svc: svc}
}

// optionsFromQuery maps URL query parameters onto search options. Absent
// booleans stay false; unparsable values are treated as absent rather than
// rejected, matching the engine's degrade-not-fail contract.
func optionsFromQuery(q url.Values) search.Options {
	boolParam := func(name string) bool {
		v, err := strconv.ParseBool(q.Get(name))
		return err == nil && v
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	return search.Options{
		FastSearch:               boolParam("fastSearch"),
		IncludeArchivedNotes:     boolParam("includeArchivedNotes"),
		IncludeHiddenNotes:       boolParam("includeHiddenNotes"),
		IgnoreHoistedNote:        boolParam("ignoreHoistedNote"),
		IgnoreInternalAttributes: boolParam("ignoreInternalAttributes"),
		AncestorNoteID:           q.Get("ancestorNoteId"),
		AncestorDepth:            q.Get("ancestorDepth"),
		OrderBy:                  q.Get("orderBy"),
		OrderDirection:           q.Get("orderDirection"),
		Limit:                    limit,
		Debug:                    boolParam("debug"),
		FuzzyAttributeSearch:     boolParam("fuzzyAttributeSearch"),
	}
}

// Search handles GET /api/search. Parse errors do not fail the request:
// the response carries the empty result set plus the first recorded error.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, messageBody("query parameter 'q' is required"))
		return
	}

	sc, err := h.svc.NewContext(r.Context(), optionsFromQuery(r.URL.Query()))
	if err != nil {
		slog.Error("search context failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageBody("internal error"))
		return
	}

	results, err := h.svc.FindResultsWithQuery(r.Context(), q, sc)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageBody("internal error"))
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	resp := SearchResponse{Results: results, Error: sc.Err()}
	if sc.Debug {
		resp.HighlightedTokens = sc.HighlightedTokens
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote handles GET /api/notes/{noteId}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteId")
	if noteID == "" {
		writeJSON(w, http.StatusBadRequest, messageBody("noteId is required"))
		return
	}
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		slog.Error("get note: snapshot", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageBody("internal error"))
		return
	}
	n := snap.GetNote(noteID)
	if n == nil {
		writeJSON(w, http.StatusNotFound, messageBody("not found"))
		return
	}

	attrs := snap.Attributes(noteID)
	dto := NoteDetail{
		NoteID:     n.NoteID,
		Title:      n.Title,
		Type:       n.Type,
		Mime:       n.Mime,
		Attributes: make([]AttributeDTO, 0, len(attrs)),
		NotePath:   snap.BestNotePath(noteID),
	}
	for _, a := range attrs {
		dto.Attributes = append(dto.Attributes, AttributeDTO{
			AttributeID: a.AttributeID,
			Type:        a.Type,
			Name:        a.Name,
			Value:       a.Value,
			Inheritable: a.Inheritable,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// Backlinks handles GET /api/notes/{noteId}/backlinks: notes whose
// relations target the given note.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteId")
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		slog.Error("backlinks: snapshot", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, messageBody("internal error"))
		return
	}
	if snap.GetNote(noteID) == nil {
		writeJSON(w, http.StatusNotFound, messageBody("not found"))
		return
	}

	var sources []string
	seen := map[string]bool{}
	for _, id := range snap.NoteIDs() {
		for _, a := range snap.OwnedAttributes(id) {
			if a.IsRelation() && a.TargetNoteID() == noteID && !seen[id] {
				seen[id] = true
				sources = append(sources, id)
			}
		}
	}
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"backlinks": sources})
}
