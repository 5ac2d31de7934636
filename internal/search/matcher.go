package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/toolora/toolora-search/internal/catalog"
)

// NormalizeQuery lowercases and trims query and splits it into words.
func NormalizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

// SearchScored ranks the indexed records against query.
//
// Every query word is compared with every index key. An equal key adds
// ExactWeight, a key that contains the word (or is contained by it) adds
// PartialWeight, and a key within FuzzyMaxDistance edits (but not equal)
// adds max(1, FuzzyBase-distance). The bonuses go to every record under the
// key and are summed across keys and words. Records are ordered by score,
// ties keep catalog order, and the list is cut to MaxResults.
func (ix *Index) SearchScored(query string) []Result {
	return ix.SearchScoredLimit(query, ix.opts.MaxResults)
}

// SearchScoredLimit is SearchScored with an explicit result cap.
func (ix *Index) SearchScoredLimit(query string, limit int) []Result {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < ix.opts.MinQueryLength {
		return []Result{}
	}
	words := NormalizeQuery(query)
	if len(words) == 0 {
		return []Result{}
	}

	scores := make([]int, len(ix.records))
	for _, word := range words {
		ix.scoreWord(word, scores)
	}

	results := make([]Result, 0)
	for pos, score := range scores {
		if score > 0 {
			results = append(results, Result{Record: ix.records[pos], Score: float64(score)})
		}
	}

	// positions are collected in catalog order, so a stable sort keeps it for ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Search returns the ranked records for query.
func (ix *Index) Search(query string) []catalog.ToolRecord {
	return Records(ix.SearchScored(query))
}

func (ix *Index) scoreWord(word string, scores []int) {
	o := ix.opts
	wordRunes := []rune(word)

	for i, key := range ix.keys {
		bonus := 0
		if key == word {
			bonus += o.ExactWeight
		} else {
			if strings.Contains(key, word) || strings.Contains(word, key) {
				bonus += o.PartialWeight
			}
			if o.FuzzyMaxDistance > 0 {
				if d, ok := withinDistance(wordRunes, ix.keyRunes[i], o.FuzzyMaxDistance); ok && d > 0 {
					bonus += max(1, o.FuzzyBase-d)
				}
			}
		}
		if bonus == 0 {
			continue
		}
		for _, pos := range ix.postings[key] {
			scores[pos] += bonus
		}
	}
}
