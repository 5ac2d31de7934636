package learning

import (
	"time"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/storage"
)

// PopularTool is a catalog record with its popularity.
type PopularTool struct {
	Record     catalog.ToolRecord `json:"record"`
	Score      float64            `json:"score"`
	Selections int                `json:"selections"`
}

// PopularTools ranks the most used tools of the last week. When history is
// thin, the list is topped up with the tools the catalog flags as popular.
// Tools no longer in the catalog are ignored.
func PopularTools(store storage.Storage, cat *catalog.Catalog, limit int) []PopularTool {
	if limit <= 0 {
		limit = 10
	}

	out := make([]PopularTool, 0, limit)
	seen := make(map[string]bool)

	if store != nil {
		// over-fetch so stale IDs do not shrink the list
		counts, _ := store.ToolUsageCounts(time.Now().Add(-frequencyWindow), limit*3)

		selections := make(map[string]int, len(counts))
		ids := make([]string, 0, len(counts))
		for _, c := range counts {
			if _, ok := cat.Get(c.ToolID); !ok {
				continue
			}
			selections[c.ToolID] = c.Selections
			ids = append(ids, c.ToolID)
		}

		for _, ts := range RankTools(ids, store) {
			if len(out) == limit {
				break
			}
			record, _ := cat.Get(ts.ToolID)
			out = append(out, PopularTool{Record: record, Score: ts.Score, Selections: selections[ts.ToolID]})
			seen[ts.ToolID] = true
		}
	}

	for _, r := range cat.Popular() {
		if len(out) == limit {
			break
		}
		if seen[r.ID] {
			continue
		}
		out = append(out, PopularTool{Record: r})
		seen[r.ID] = true
	}

	return out
}
