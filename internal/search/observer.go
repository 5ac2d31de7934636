package search

import (
	"time"

	"github.com/toolora/toolora-search/internal/catalog"
)

// Observer is told about every completed search.
type Observer interface {
	ObserveSearch(engine, query string, results int, elapsed time.Duration)
}

// NopObserver ignores all searches.
type NopObserver struct{}

// ObserveSearch implements Observer.
func (NopObserver) ObserveSearch(string, string, int, time.Duration) {}

// ObservedSearcher reports each query it forwards to an Observer.
type ObservedSearcher struct {
	next     Searcher
	engine   string
	observer Observer
}

// NewObservedSearcher wraps next. A nil observer becomes NopObserver.
func NewObservedSearcher(next Searcher, engine string, observer Observer) *ObservedSearcher {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ObservedSearcher{next: next, engine: engine, observer: observer}
}

// SearchScored forwards the query and reports its duration.
func (s *ObservedSearcher) SearchScored(query string) []Result {
	start := time.Now()
	results := s.next.SearchScored(query)
	s.observer.ObserveSearch(s.engine, query, len(results), time.Since(start))
	return results
}

// Search returns the ranked records for query.
func (s *ObservedSearcher) Search(query string) []catalog.ToolRecord {
	return Records(s.SearchScored(query))
}

// Close closes the wrapped searcher.
func (s *ObservedSearcher) Close() error {
	return Close(s.next)
}
