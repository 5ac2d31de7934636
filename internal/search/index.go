package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
)

// Index is an inverted index from lowercased words to the records that
// contain them. It is read-only once built and safe for concurrent use.
type Index struct {
	records  []catalog.ToolRecord
	postings map[string][]int // key -> record positions, ascending
	keys     []string         // sorted
	keyRunes [][]rune         // keyRunes[i] is keys[i] as runes
	skipped  int
	opts     Options
}

// BuildIndex indexes records in catalog order. Malformed records (blank ID,
// display name or category) are skipped with a warning. Building never fails.
func BuildIndex(records []catalog.ToolRecord, opts ...Option) *Index {
	o := resolveOptions(opts)
	logger := o.Logger.Named("index")

	ix := &Index{
		records:  make([]catalog.ToolRecord, 0, len(records)),
		postings: make(map[string][]int),
		opts:     o,
	}

	for i, r := range records {
		if !catalog.IsWellFormed(r) {
			ix.skipped++
			logger.Warn("skipping malformed tool record",
				zap.Int("position", i),
				zap.String("id", r.ID),
				zap.String("displayName", r.DisplayName),
				zap.String("category", r.Category))
			continue
		}

		pos := len(ix.records)
		ix.records = append(ix.records, r)
		for _, word := range recordWords(r) {
			ix.add(word, pos)
		}
	}

	ix.keys = make([]string, 0, len(ix.postings))
	for key := range ix.postings {
		ix.keys = append(ix.keys, key)
	}
	sort.Strings(ix.keys)

	ix.keyRunes = make([][]rune, len(ix.keys))
	for i, key := range ix.keys {
		ix.keyRunes[i] = []rune(key)
	}

	logger.Debug("index built",
		zap.Int("records", len(ix.records)),
		zap.Int("keys", len(ix.keys)),
		zap.Int("skipped", ix.skipped))

	return ix
}

// add appends pos to the posting list of word once. Positions arrive in
// ascending order, so a duplicate can only be the last entry.
func (ix *Index) add(word string, pos int) {
	list := ix.postings[word]
	if n := len(list); n > 0 && list[n-1] == pos {
		return
	}
	ix.postings[word] = append(list, pos)
}

// recordWords returns the searchable words of r: its display name,
// category, description and keywords, lowercased and split on whitespace.
func recordWords(r catalog.ToolRecord) []string {
	terms := make([]string, 0, 3+len(r.Keywords))
	terms = append(terms, r.DisplayName, r.Category, r.Description)
	terms = append(terms, r.Keywords...)

	var words []string
	for _, term := range terms {
		words = append(words, Tokenize(term)...)
	}
	return words
}

// Tokenize lowercases s, splits it on whitespace and drops words shorter
// than MinTokenLength runes.
func Tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenLength {
			out = append(out, f)
		}
	}
	return out
}

// Keys returns the index keys in sorted order.
func (ix *Index) Keys() []string {
	return append([]string(nil), ix.keys...)
}

// Lookup returns the records stored under key, in catalog order.
func (ix *Index) Lookup(key string) []catalog.ToolRecord {
	positions := ix.postings[key]
	if len(positions) == 0 {
		return nil
	}
	out := make([]catalog.ToolRecord, len(positions))
	for i, pos := range positions {
		out[i] = ix.records[pos]
	}
	return out
}

// IDs returns the record IDs stored under key, in catalog order.
func (ix *Index) IDs(key string) []string {
	positions := ix.postings[key]
	out := make([]string, len(positions))
	for i, pos := range positions {
		out[i] = ix.records[pos].ID
	}
	return out
}

// Records returns the indexed records in catalog order.
func (ix *Index) Records() []catalog.ToolRecord {
	return append([]catalog.ToolRecord(nil), ix.records...)
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	return len(ix.records)
}

// KeyCount returns the number of distinct keys.
func (ix *Index) KeyCount() int {
	return len(ix.keys)
}

// Skipped returns how many malformed records were left out.
func (ix *Index) Skipped() int {
	return ix.skipped
}

// Options returns the tuning the index was built with.
func (ix *Index) Options() Options {
	return ix.opts
}
