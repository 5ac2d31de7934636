package search

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
)

var errIndexClosed = errors.New("bleve index closed")

// SearchBM25 runs a BM25 query and returns up to limit results ordered by
// score, ties by catalog order.
func (i *Indexer) SearchBM25(text string, fuzziness, limit int) ([]Result, error) {
	return i.search(i.buildMatchQuery(text, fuzziness), limit)
}

// SearchByCategory runs a BM25 query restricted to one category slug.
func (i *Indexer) SearchByCategory(text, category string, fuzziness, limit int) ([]Result, error) {
	categoryQuery := bleve.NewTermQuery(category)
	categoryQuery.SetField("categoryId")

	return i.search(bleve.NewConjunctionQuery(i.buildMatchQuery(text, fuzziness), categoryQuery), limit)
}

func (i *Indexer) search(q query.Query, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.bleveIndex == nil {
		return nil, errIndexClosed
	}
	if limit <= 0 {
		limit = len(i.records)
	}
	if limit == 0 {
		return []Result{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, 0, false)

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return i.convertBleveResults(results), nil
}

// convertBleveResults maps hits back to records.
func (i *Indexer) convertBleveResults(results *bleve.SearchResult) []Result {
	out := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		pos, ok := i.position[hit.ID]
		if !ok {
			continue
		}
		out = append(out, Result{Record: i.records[pos], Score: hit.Score})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return i.position[out[a].Record.ID] < i.position[out[b].Record.ID]
	})

	return out
}

// BM25Searcher adapts an Indexer to the Searcher interface.
type BM25Searcher struct {
	indexer *Indexer
	opts    Options
	logger  *zap.Logger
}

// NewBM25Searcher indexes records into a fresh in-memory Bleve index.
func NewBM25Searcher(records []catalog.ToolRecord, opts ...Option) (*BM25Searcher, error) {
	o := resolveOptions(opts)

	indexer, err := NewIndexer(o.Logger)
	if err != nil {
		return nil, err
	}
	if err := indexer.IndexRecords(records); err != nil {
		indexer.Close()
		return nil, err
	}

	return &BM25Searcher{
		indexer: indexer,
		opts:    o,
		logger:  o.Logger.Named("bm25"),
	}, nil
}

// SearchScored ranks records with BM25. Queries below MinQueryLength and
// engine failures yield an empty list.
func (s *BM25Searcher) SearchScored(query string) []Result {
	return s.searchLimit(query, s.opts.MaxResults)
}

// Search returns the ranked records for query.
func (s *BM25Searcher) Search(query string) []catalog.ToolRecord {
	return Records(s.SearchScored(query))
}

func (s *BM25Searcher) searchLimit(query string, limit int) []Result {
	text := strings.TrimSpace(query)
	if utf8.RuneCountInString(text) < s.opts.MinQueryLength {
		return []Result{}
	}

	results, err := s.indexer.SearchBM25(strings.ToLower(text), s.opts.FuzzyMaxDistance, limit)
	if err != nil {
		s.logger.Warn("bm25 search failed", zap.String("query", text), zap.Error(err))
		return []Result{}
	}
	return results
}

// Close releases the Bleve index.
func (s *BM25Searcher) Close() error {
	return s.indexer.Close()
}
