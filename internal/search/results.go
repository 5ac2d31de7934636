/*
Package search ranks Toolora catalog records against free-text queries.

The default engine is an inverted index with exact, substring and bounded
Levenshtein matching. A BM25 engine backed by an in-memory Bleve index and a
hybrid engine that fuses both rankings are also available, together with an
optional memoizing wrapper and a metrics observer hook.
*/
package search

import (
	"fmt"
	"io"

	"github.com/toolora/toolora-search/internal/catalog"
)

// Engine names accepted by NewSearcher.
const (
	EngineInverted = "inverted"
	EngineBM25     = "bm25"
	EngineHybrid   = "hybrid"
)

// Engines lists the supported engine names.
var Engines = []string{EngineInverted, EngineBM25, EngineHybrid}

// Result is a ranked record with its relevance score.
type Result struct {
	Record catalog.ToolRecord `json:"record"`
	Score  float64            `json:"score"`
}

// Searcher answers ranked queries over a fixed set of records.
type Searcher interface {
	Search(query string) []catalog.ToolRecord
	SearchScored(query string) []Result
}

// Records strips scores from results.
func Records(results []Result) []catalog.ToolRecord {
	out := make([]catalog.ToolRecord, len(results))
	for i, r := range results {
		out[i] = r.Record
	}
	return out
}

// NewSearcher builds the named engine over records.
func NewSearcher(engine string, records []catalog.ToolRecord, opts ...Option) (Searcher, error) {
	switch engine {
	case "", EngineInverted:
		return BuildIndex(records, opts...), nil
	case EngineBM25:
		return NewBM25Searcher(records, opts...)
	case EngineHybrid:
		return NewHybridSearcher(records, resolveOptions(opts).Fusion, opts...)
	default:
		return nil, fmt.Errorf("unknown search engine %q", engine)
	}
}

// Close releases engine resources when s holds any.
func Close(s Searcher) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
