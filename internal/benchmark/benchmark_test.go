package benchmark

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

// fixedSearcher answers every query with the same records.
type fixedSearcher struct {
	results map[string][]search.Result
	calls   int
}

func (f *fixedSearcher) SearchScored(query string) []search.Result {
	f.calls++
	return f.results[query]
}

func (f *fixedSearcher) Search(query string) []catalog.ToolRecord {
	return search.Records(f.SearchScored(query))
}

func result(id string) search.Result {
	return search.Result{Record: catalog.ToolRecord{ID: id}, Score: 1}
}

func TestRun(t *testing.T) {
	s := &fixedSearcher{results: map[string][]search.Result{
		"merge": {result("pdf-merge"), result("pdf-split")},
		"split": {result("pdf-merge")},
		"any":   {result("qr-generator")},
	}}

	queries := []Query{
		{Text: "merge", Expect: "pdf-merge"},
		{Text: "split", Expect: "pdf-split"},
		{Text: "any"},
		{Text: "nothing"},
	}

	report := Run(s, "fixed", queries, 3)

	assert.Equal(t, 12, s.calls)
	assert.Equal(t, "fixed", report.Engine)
	assert.Equal(t, 3, report.Iterations)
	require.Len(t, report.Queries, 4)

	assert.True(t, report.Queries[0].TopMatch)
	assert.Equal(t, 2, report.Queries[0].Results)
	assert.False(t, report.Queries[1].TopMatch)
	assert.Equal(t, "pdf-merge", report.Queries[1].Top)
	assert.True(t, report.Queries[2].Hit)
	assert.False(t, report.Queries[3].Hit)
	assert.Empty(t, report.Queries[3].Top)

	assert.InDelta(t, 75.0, report.HitRate, 0.01)
	assert.InDelta(t, 50.0, report.TopAccuracy, 0.01)
}

func TestRun_Defaults(t *testing.T) {
	s := &fixedSearcher{}
	report := Run(s, "fixed", nil, 0)

	assert.Equal(t, DefaultIterations, report.Iterations)
	assert.Len(t, report.Queries, len(DefaultQueries))
	assert.Zero(t, report.HitRate)
}

func TestRun_BuiltinCatalog(t *testing.T) {
	cat, err := catalog.Builtin(nil)
	require.NoError(t, err)

	report := Run(search.BuildIndex(cat.Records()), search.EngineInverted, DefaultQueries, 2)

	for _, q := range report.Queries {
		if q.Expect != "" && !q.TopMatch {
			t.Errorf("query %q: expected %s first, got %q", q.Query, q.Expect, q.Top)
		}
	}
	assert.Greater(t, report.HitRate, 90.0)
}

func TestReportJSON(t *testing.T) {
	report := Run(&fixedSearcher{}, "fixed", []Query{{Text: "x"}}, 1)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "fixed", decoded["engine"])
	assert.Contains(t, decoded, "hitRate")
	assert.Contains(t, decoded, "queries")
}

func TestFormatReport(t *testing.T) {
	s := &fixedSearcher{results: map[string][]search.Result{
		"merge": {result("pdf-merge")},
	}}
	report := Run(s, "inverted", []Query{
		{Text: "merge", Expect: "pdf-merge"},
		{Text: "a very long query that will not fit"},
	}, 1)

	out := FormatReport(report)

	assert.Contains(t, out, "SEARCH BENCHMARK RESULTS")
	assert.Contains(t, out, "inverted")
	assert.Contains(t, out, "✓ merge")
	assert.Contains(t, out, "∅ a very long query t…")
	assert.Contains(t, out, "Hit rate:      50.0%")
	assert.True(t, strings.HasSuffix(out, "╝\n"))
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "500ns", formatLatency(500*time.Nanosecond))
	assert.Equal(t, "1.5µs", formatLatency(1500*time.Nanosecond))
	assert.Equal(t, "2.00ms", formatLatency(2*time.Millisecond))
}
