package storage

import "time"

// UsageEvent is one tool shown in, or picked from, a result list.
type UsageEvent struct {
	// ToolID is the catalog slug of the tool.
	ToolID string `json:"tool_id"`

	// Category is the tool's category slug.
	Category string `json:"category"`

	// ContextHash is the SHA256 hash of the query that surfaced the tool.
	ContextHash string `json:"context_hash"`

	// Timestamp is when the event happened.
	Timestamp time.Time `json:"timestamp"`

	// Selected is true when the user opened the tool, false for an impression.
	Selected bool `json:"selected"`
}

// SearchRecord represents a search query for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`

	// Engine is the search engine that answered.
	Engine string `json:"engine"`
}

// ToolCount is the selection tally of one tool.
type ToolCount struct {
	ToolID     string    `json:"tool_id"`
	Category   string    `json:"category"`
	Selections int       `json:"selections"`
	LastUsed   time.Time `json:"last_used"`
}

// SearchSummary aggregates search_history rows.
type SearchSummary struct {
	Total       int            `json:"total"`
	ZeroResults int            `json:"zero_results"`
	ByEngine    map[string]int `json:"by_engine"`
	Selections  int            `json:"selections"`
}
