package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bm25 engine", func(c *Config) { c.Search.Engine = "bm25" }, ""},
		{"unknown engine", func(c *Config) { c.Search.Engine = "semantic" }, "search.engine"},
		{"zero min query length", func(c *Config) { c.Search.MinQueryLength = 0 }, "search.minQueryLength"},
		{"zero max results", func(c *Config) { c.Search.MaxResults = 0 }, "search.maxResults"},
		{"fuzzy off", func(c *Config) { c.Search.FuzzyMaxDistance = 0 }, ""},
		{"fuzzy too large", func(c *Config) { c.Search.FuzzyMaxDistance = 4 }, "search.fuzzyMaxDistance"},
		{"negative weight", func(c *Config) { c.Search.PartialWeight = -1 }, "weights"},
		{"cache disabled", func(c *Config) { c.Search.CacheSize = 0 }, ""},
		{"negative cache", func(c *Config) { c.Search.CacheSize = -1 }, "search.cacheSize"},
		{"zero hybrid weights", func(c *Config) {
			c.Search.HybridInvertedWeight = 0
			c.Search.HybridBM25Weight = 0
		}, "hybrid"},
		{"empty listen address", func(c *Config) { c.Server.ListenAddress = "" }, "server.listenAddress"},
		{"negative retention", func(c *Config) { c.Storage.RetentionDays = -1 }, "storage.retentionDays"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := NewConfig()
	cfg.Search.MaxResults = 0
	cfg.Search.MinQueryLength = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, field := range []string{"search.maxResults", "search.minQueryLength"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should mention %s, got: %v", field, err)
		}
	}
}
