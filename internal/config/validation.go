package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/toolora/toolora-search/internal/search"
)

// MaxFuzzyDistance is the largest accepted search.fuzzyMaxDistance.
const MaxFuzzyDistance = 3

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if !isEngine(c.Search.Engine) {
		errs = append(errs, fmt.Errorf("search.engine: %q is not one of %s", c.Search.Engine, strings.Join(search.Engines, ", ")))
	}
	if c.Search.MinQueryLength < 1 {
		errs = append(errs, fmt.Errorf("search.minQueryLength: must be at least 1, got %d", c.Search.MinQueryLength))
	}
	if c.Search.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("search.maxResults: must be at least 1, got %d", c.Search.MaxResults))
	}
	if c.Search.FuzzyMaxDistance < 0 || c.Search.FuzzyMaxDistance > MaxFuzzyDistance {
		errs = append(errs, fmt.Errorf("search.fuzzyMaxDistance: must be between 0 and %d, got %d", MaxFuzzyDistance, c.Search.FuzzyMaxDistance))
	}
	if c.Search.ExactWeight < 0 || c.Search.PartialWeight < 0 {
		errs = append(errs, fmt.Errorf("search weights must not be negative"))
	}
	if c.Search.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("search.cacheSize: must not be negative, got %d", c.Search.CacheSize))
	}
	if c.Search.HybridInvertedWeight < 0 || c.Search.HybridBM25Weight < 0 ||
		c.Search.HybridInvertedWeight+c.Search.HybridBM25Weight == 0 {
		errs = append(errs, fmt.Errorf("hybrid weights must be non-negative and not both zero"))
	}
	if c.Server.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("server.listenAddress: must not be empty"))
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("server.shutdownTimeoutSeconds: must not be negative"))
	}
	if c.Storage.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("storage.retentionDays: must not be negative, got %d", c.Storage.RetentionDays))
	}

	return errors.Join(errs...)
}

func isEngine(name string) bool {
	for _, e := range search.Engines {
		if e == name {
			return true
		}
	}
	return false
}
