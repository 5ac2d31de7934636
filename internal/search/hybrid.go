package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/toolora/toolora-search/internal/catalog"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	InvertedWeight float64
	BM25Weight     float64
}

// DefaultFusionConfig favors the inverted index (70% inverted, 30% BM25).
var DefaultFusionConfig = FusionConfig{
	InvertedWeight: 0.7,
	BM25Weight:     0.3,
}

// HybridSearcher fuses inverted index and BM25 rankings.
type HybridSearcher struct {
	inverted *Index
	bm25     *BM25Searcher
	config   FusionConfig
	opts     Options
	position map[string]int
}

// NewHybridSearcher builds both engines over records.
func NewHybridSearcher(records []catalog.ToolRecord, config FusionConfig, opts ...Option) (*HybridSearcher, error) {
	inverted := BuildIndex(records, opts...)

	bm25, err := NewBM25Searcher(records, opts...)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, inverted.Len())
	for i, r := range inverted.records {
		position[r.ID] = i
	}

	return &HybridSearcher{
		inverted: inverted,
		bm25:     bm25,
		config:   config,
		opts:     inverted.opts,
		position: position,
	}, nil
}

// SearchScored ranks records by the weighted sum of both engines'
// normalized scores. A record missing from one engine contributes zero
// from that side.
func (h *HybridSearcher) SearchScored(query string) []Result {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < h.opts.MinQueryLength {
		return []Result{}
	}

	// rank the full candidate sets before cutting
	invertedResults := normalizeScores(h.inverted.SearchScoredLimit(query, 0))
	bm25Results := normalizeScores(h.bm25.searchLimit(query, 0))

	fused := fuseScores(invertedResults, bm25Results, h.config)

	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return h.position[fused[i].Record.ID] < h.position[fused[j].Record.ID]
	})

	if len(fused) > h.opts.MaxResults {
		fused = fused[:h.opts.MaxResults]
	}
	return fused
}

// Search returns the ranked records for query.
func (h *HybridSearcher) Search(query string) []catalog.ToolRecord {
	return Records(h.SearchScored(query))
}

// Close releases the BM25 index.
func (h *HybridSearcher) Close() error {
	return h.bm25.Close()
}

// fuseScores combines both result sets by record ID using weighted fusion.
func fuseScores(invertedResults, bm25Results []Result, config FusionConfig) []Result {
	fused := make(map[string]*Result, len(invertedResults)+len(bm25Results))
	order := make([]string, 0, len(invertedResults)+len(bm25Results))

	add := func(results []Result, weight float64) {
		for _, r := range results {
			entry, ok := fused[r.Record.ID]
			if !ok {
				entry = &Result{Record: r.Record}
				fused[r.Record.ID] = entry
				order = append(order, r.Record.ID)
			}
			entry.Score += weight * r.Score
		}
	}
	add(invertedResults, config.InvertedWeight)
	add(bm25Results, config.BM25Weight)

	out := make([]Result, 0, len(order))
	for _, id := range order {
		out = append(out, *fused[id])
	}
	return out
}

// normalizeScores normalizes scores to [0, 1] range.
func normalizeScores(results []Result) []Result {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score

	for _, result := range results {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	normalized := make([]Result, len(results))
	for i, result := range results {
		normalized[i] = result
		// all scores equal: every hit is equally relevant
		if maxScore == minScore {
			normalized[i].Score = 1.0
			continue
		}
		normalized[i].Score = (result.Score - minScore) / (maxScore - minScore)
	}

	return normalized
}
