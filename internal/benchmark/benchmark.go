/*
Package benchmark measures search latency and result quality.

A benchmark replays a fixed set of representative queries against a
searcher, several iterations each, and reports per-query average latency,
how many queries found anything (hit rate), and how often the expected tool
ranked first.
*/
package benchmark

import (
	"fmt"
	"strings"
	"time"

	"github.com/toolora/toolora-search/internal/search"
)

// DefaultIterations is the number of times each query is replayed.
const DefaultIterations = 100

// Query is a benchmark query with the tool expected to rank first.
// An empty Expect only checks that something is found.
type Query struct {
	Text   string `json:"text"`
	Expect string `json:"expect,omitempty"`
}

// DefaultQueries covers exact names, partial words, typos and category terms
// against the builtin catalog.
var DefaultQueries = []Query{
	{Text: "merge pdf", Expect: "pdf-merge"},
	{Text: "qr", Expect: "qr-generator"},
	{Text: "background remover", Expect: "background-remover"},
	{Text: "emi", Expect: "loan-emi-calculator"},
	{Text: "gst", Expect: "gst-calculator"},
	{Text: "compress"},
	{Text: "video to mp3", Expect: "video-to-mp3"},
	{Text: "resume", Expect: "resume-generator"},
	{Text: "aadhaar"},
	{Text: "vidoe"},
	{Text: "photo"},
	{Text: "flashcards"},
	{Text: "password", Expect: "password-generator"},
	{Text: "currency"},
	{Text: "subtitle"},
}

// QueryResult is the outcome of one benchmark query.
type QueryResult struct {
	Query      string        `json:"query"`
	Expect     string        `json:"expect,omitempty"`
	Results    int           `json:"results"`
	Top        string        `json:"top,omitempty"`
	Hit        bool          `json:"hit"`
	TopMatch   bool          `json:"topMatch"`
	AvgLatency time.Duration `json:"avgLatencyNs"`
}

// Report summarizes a benchmark run.
type Report struct {
	Engine        string        `json:"engine"`
	Iterations    int           `json:"iterations"`
	Queries       []QueryResult `json:"queries"`
	HitRate       float64       `json:"hitRate"`
	TopAccuracy   float64       `json:"topAccuracy"`
	AvgLatency    time.Duration `json:"avgLatencyNs"`
	TotalDuration time.Duration `json:"totalDurationNs"`
}

// Run replays queries against s. Each query runs iterations times; the
// results of the first run are used for quality figures.
func Run(s search.Searcher, engine string, queries []Query, iterations int) *Report {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if len(queries) == 0 {
		queries = DefaultQueries
	}

	report := &Report{
		Engine:     engine,
		Iterations: iterations,
		Queries:    make([]QueryResult, 0, len(queries)),
	}

	var hits, expected, topMatches int
	var total time.Duration

	for _, q := range queries {
		var results []search.Result
		var elapsed time.Duration

		for i := 0; i < iterations; i++ {
			start := time.Now()
			r := s.SearchScored(q.Text)
			elapsed += time.Since(start)
			if i == 0 {
				results = r
			}
		}

		qr := QueryResult{
			Query:      q.Text,
			Expect:     q.Expect,
			Results:    len(results),
			Hit:        len(results) > 0,
			AvgLatency: elapsed / time.Duration(iterations),
		}
		if qr.Hit {
			qr.Top = results[0].Record.ID
			hits++
		}
		if q.Expect != "" {
			expected++
			if qr.Top == q.Expect {
				qr.TopMatch = true
				topMatches++
			}
		}

		total += elapsed
		report.Queries = append(report.Queries, qr)
	}

	report.TotalDuration = total
	report.AvgLatency = total / time.Duration(iterations*len(queries))
	report.HitRate = float64(hits) / float64(len(queries)) * 100
	if expected > 0 {
		report.TopAccuracy = float64(topMatches) / float64(expected) * 100
	}

	return report
}

// FormatReport formats the benchmark report for display.
func FormatReport(report *Report) string {
	var sb strings.Builder

	sb.WriteString("╔══════════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║              SEARCH BENCHMARK RESULTS                        ║\n")
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Engine:     %-48s║\n", report.Engine))
	sb.WriteString(fmt.Sprintf("║  Queries:    %-48d║\n", len(report.Queries)))
	sb.WriteString(fmt.Sprintf("║  Iterations: %-48d║\n", report.Iterations))
	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")

	for _, q := range report.Queries {
		mark := "·"
		switch {
		case q.Expect != "" && q.TopMatch:
			mark = "✓"
		case q.Expect != "" && !q.TopMatch:
			mark = "✗"
		case !q.Hit:
			mark = "∅"
		}
		sb.WriteString(fmt.Sprintf("║  %s %-20s %2d results  %-10s %-12s║\n",
			mark, truncate(q.Query, 20), q.Results, formatLatency(q.AvgLatency), truncate(q.Top, 12)))
	}

	sb.WriteString("╠══════════════════════════════════════════════════════════════╣\n")
	sb.WriteString(fmt.Sprintf("║  Hit rate:      %-45s║\n", fmt.Sprintf("%.1f%%", report.HitRate)))
	sb.WriteString(fmt.Sprintf("║  Top accuracy:  %-45s║\n", fmt.Sprintf("%.1f%%", report.TopAccuracy)))
	sb.WriteString(fmt.Sprintf("║  Avg latency:   %-45s║\n", formatLatency(report.AvgLatency)))
	sb.WriteString("╚══════════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

func formatLatency(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	default:
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
