package search

import (
	"context"

	"github.com/brodal/ratatosk/internal/graph"
)

// Service is the entry point callers use to run queries. It owns the
// freshness handshake with the graph cache: a query never executes against
// a snapshot known to be stale.
type Service struct {
	cache *graph.Cache
}

// NewService creates a search service over the given cache.
func NewService(cache *graph.Cache) *Service {
	return &Service{cache: cache}
}

// NewContext builds a query context from options, resolving the default
// ancestor from the hoisted-note option in the current snapshot.
func (s *Service) NewContext(ctx context.Context, opts Options) (*Context, error) {
	snap, err := s.cache.EnsureFresh(ctx)
	if err != nil {
		return nil, err
	}
	return NewContext(opts, snap.Option(graph.OptionHoistedNoteID)), nil
}

// FindResultsWithQuery refreshes the snapshot if needed and evaluates the
// query. Parse and evaluation problems are accumulated on sc, not returned;
// the error return covers only snapshot reload failures.
func (s *Service) FindResultsWithQuery(ctx context.Context, query string, sc *Context) ([]Result, error) {
	snap, err := s.cache.EnsureFresh(ctx)
	if err != nil {
		return nil, err
	}
	return FindResults(snap, query, sc), nil
}

// Snapshot exposes the current graph snapshot for callers that need note
// details alongside search results.
func (s *Service) Snapshot(ctx context.Context) (*graph.Snapshot, error) {
	return s.cache.EnsureFresh(ctx)
}
