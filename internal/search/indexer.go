package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
)

// bleve caps fuzziness at two edits.
const maxBleveFuzziness = 2

// Indexer is an in-memory Bleve index over tool records.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex

	records  []catalog.ToolRecord
	position map[string]int
	logger   *zap.Logger
}

// NewIndexer creates an empty in-memory Bleve index.
func NewIndexer(logger *zap.Logger) (*Indexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{
		bleveIndex: index,
		position:   make(map[string]int),
		logger:     logger.Named("bleve"),
	}, nil
}

// buildIndexMapping maps the searchable record fields to text fields.
func buildIndexMapping() mapping.IndexMapping {
	toolMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "category", "description", "keywords"} {
		toolMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	// category slug kept verbatim for filtering
	slugMapping := bleve.NewKeywordFieldMapping()
	slugMapping.IncludeInAll = false
	toolMapping.AddFieldMappingsAt("categoryId", slugMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", toolMapping)

	return indexMapping
}

// IndexRecords adds records in catalog order. Malformed records are skipped.
func (i *Indexer) IndexRecords(records []catalog.ToolRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, r := range records {
		if !catalog.IsWellFormed(r) {
			i.logger.Warn("skipping malformed tool record", zap.String("id", r.ID))
			continue
		}
		if _, dup := i.position[r.ID]; dup {
			continue
		}

		doc := map[string]interface{}{
			"name":        r.DisplayName,
			"category":    r.Category + " " + r.CategoryDisplayName,
			"categoryId":  r.Category,
			"description": r.Description,
			"keywords":    strings.Join(r.Keywords, " "),
		}

		if err := batch.Index(r.ID, doc); err != nil {
			i.logger.Warn("failed to index tool", zap.String("id", r.ID), zap.Error(err))
			continue
		}
		i.position[r.ID] = len(i.records)
		i.records = append(i.records, r)
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index tools: %w", err)
	}

	return nil
}

// Count returns the number of indexed documents.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		err := i.bleveIndex.Close()
		i.bleveIndex = nil
		return err
	}

	return nil
}

// buildMatchQuery matches the text as-is or within fuzziness edits per term.
func (i *Indexer) buildMatchQuery(searchText string, fuzziness int) query.Query {
	exact := bleve.NewMatchQuery(searchText)
	if fuzziness <= 0 {
		return exact
	}

	fuzzy := bleve.NewMatchQuery(searchText)
	fuzzy.SetFuzziness(min(fuzziness, maxBleveFuzziness))
	fuzzy.SetBoost(0.5)

	return bleve.NewDisjunctionQuery(exact, fuzzy)
}
