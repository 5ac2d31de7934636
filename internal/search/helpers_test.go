package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/catalog"
)

// twoToolCatalog is the small PDF catalog used across ranking tests.
func twoToolCatalog() []catalog.ToolRecord {
	return []catalog.ToolRecord{
		{ID: "pdf-merge", DisplayName: "PDF Merge", Category: "pdf", Keywords: []string{"combine", "join"}},
		{ID: "pdf-split", DisplayName: "PDF Split", Category: "pdf", Keywords: []string{"divide"}},
	}
}

// numberedCatalog returns n records that all contain the word "widget".
func numberedCatalog(n int) []catalog.ToolRecord {
	records := make([]catalog.ToolRecord, n)
	for i := range records {
		records[i] = catalog.ToolRecord{
			ID:          fmt.Sprintf("tool-%02d", i),
			DisplayName: fmt.Sprintf("Widget %02d", i),
			Category:    "utility",
		}
	}
	return records
}

func builtinRecords(t *testing.T) []catalog.ToolRecord {
	t.Helper()
	cat, err := catalog.Builtin(nil)
	require.NoError(t, err)
	return cat.Records()
}

func ids(records []catalog.ToolRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
