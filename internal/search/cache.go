package search

import (
	"strings"
	"sync"

	"github.com/toolora/toolora-search/internal/catalog"
)

// DefaultCacheSize bounds CachedSearcher when no size is given.
const DefaultCacheSize = 256

// CachedSearcher memoizes scored results per normalized query. When full,
// the oldest entry is evicted.
type CachedSearcher struct {
	next     Searcher
	capacity int

	mu      sync.Mutex
	entries map[string][]Result
	order   []string
	hits    uint64
	misses  uint64
}

// NewCachedSearcher wraps next with a cache of at most capacity queries.
func NewCachedSearcher(next Searcher, capacity int) *CachedSearcher {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &CachedSearcher{
		next:     next,
		capacity: capacity,
		entries:  make(map[string][]Result, capacity),
	}
}

// SearchScored returns the cached ranking for query, computing it on a miss.
func (c *CachedSearcher) SearchScored(query string) []Result {
	key := strings.Join(NormalizeQuery(query), " ")

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return append([]Result(nil), cached...)
	}
	c.misses++
	c.mu.Unlock()

	results := c.next.SearchScored(query)

	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = append([]Result(nil), results...)
		c.order = append(c.order, key)
	}
	c.mu.Unlock()

	return results
}

// Search returns the ranked records for query.
func (c *CachedSearcher) Search(query string) []catalog.ToolRecord {
	return Records(c.SearchScored(query))
}

// Reset drops every cached entry.
func (c *CachedSearcher) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]Result, c.capacity)
	c.order = nil
}

// Stats returns cache hits, misses and current size.
func (c *CachedSearcher) Stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

// Close closes the wrapped searcher.
func (c *CachedSearcher) Close() error {
	c.Reset()
	return Close(c.next)
}
