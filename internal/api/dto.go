package api

import (
	"github.com/brodal/ratatosk/internal/search"
)

// SearchResponse wraps internal search results. Error carries the first
// parse or evaluation problem recorded for the query; a query with an
// error still returns a structured (possibly empty) result list.
type SearchResponse struct {
	Results           []search.Result `json:"results"`
	HighlightedTokens []string        `json:"highlightedTokens,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// AttributeDTO is one attribute on a note detail response.
type AttributeDTO struct {
	AttributeID string `json:"attributeId"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	Inheritable bool   `json:"isInheritable,omitempty"`
}

// NoteDetail is the full note representation returned by GET /notes/{noteId}.
type NoteDetail struct {
	NoteID     string         `json:"noteId"`
	Title      string         `json:"title"`
	Type       string         `json:"type"`
	Mime       string         `json:"mime"`
	Attributes []AttributeDTO `json:"attributes"`
	NotePath   []string       `json:"notePath,omitempty"`
}
