/*
Package config handles loading and saving toolora-search configuration.

Configuration is stored in ~/.toolora-search.json (YAML is accepted when the
file ends in .yaml or .yml). Every field has a default, so the file only needs
the values that differ. Environment variables prefixed with TOOLORA_ override
the file, e.g. TOOLORA_SEARCH_MAXRESULTS=5.

Schema:
	{
	  "search": {
	    "engine": "inverted",
	    "minQueryLength": 2,
	    "maxResults": 8,
	    "fuzzyMaxDistance": 2,
	    "exactWeight": 10,
	    "partialWeight": 5,
	    "cacheSize": 256,
	    "hybridInvertedWeight": 0.7,
	    "hybridBM25Weight": 0.3
	  },
	  "catalog": {"path": "", "watch": false},
	  "server": {"listenAddress": "127.0.0.1:8080", "shutdownTimeoutSeconds": 5},
	  "storage": {"enabled": true, "path": "~/.toolora-search/history.db", "retentionDays": 90},
	  "logging": {"level": "info", "development": false}
	}
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toolora/toolora-search/internal/search"
)

// Config represents the root configuration structure.
type Config struct {
	Search  SearchConfig  `json:"search" mapstructure:"search"`
	Catalog CatalogConfig `json:"catalog" mapstructure:"catalog"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// SearchConfig holds the ranking knobs and engine selection.
type SearchConfig struct {
	// Engine is one of inverted, bm25 or hybrid.
	Engine string `json:"engine" mapstructure:"engine"`

	MinQueryLength   int `json:"minQueryLength" mapstructure:"minQueryLength"`
	MaxResults       int `json:"maxResults" mapstructure:"maxResults"`
	FuzzyMaxDistance int `json:"fuzzyMaxDistance" mapstructure:"fuzzyMaxDistance"`
	ExactWeight      int `json:"exactWeight" mapstructure:"exactWeight"`
	PartialWeight    int `json:"partialWeight" mapstructure:"partialWeight"`

	// CacheSize bounds the query result cache. Zero disables caching.
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize"`

	// Hybrid fusion weights, used by the hybrid engine only.
	HybridInvertedWeight float64 `json:"hybridInvertedWeight" mapstructure:"hybridInvertedWeight"`
	HybridBM25Weight     float64 `json:"hybridBM25Weight" mapstructure:"hybridBM25Weight"`
}

// CatalogConfig selects the tool catalog.
type CatalogConfig struct {
	// Path is a YAML, JSON or JSONC catalog file. Empty means the builtin catalog.
	Path string `json:"path" mapstructure:"path"`

	// Watch reloads the catalog when the file changes (serve only).
	Watch bool `json:"watch" mapstructure:"watch"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	ListenAddress          string `json:"listenAddress" mapstructure:"listenAddress"`
	ShutdownTimeoutSeconds int    `json:"shutdownTimeoutSeconds" mapstructure:"shutdownTimeoutSeconds"`
}

// StorageConfig configures the local usage history database.
type StorageConfig struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	Path          string `json:"path" mapstructure:"path"`
	RetentionDays int    `json:"retentionDays" mapstructure:"retentionDays"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Engine:               search.EngineInverted,
			MinQueryLength:       search.DefaultMinQueryLength,
			MaxResults:           search.DefaultMaxResults,
			FuzzyMaxDistance:     search.DefaultFuzzyMaxDistance,
			ExactWeight:          search.DefaultExactWeight,
			PartialWeight:        search.DefaultPartialWeight,
			CacheSize:            search.DefaultCacheSize,
			HybridInvertedWeight: search.DefaultFusionConfig.InvertedWeight,
			HybridBM25Weight:     search.DefaultFusionConfig.BM25Weight,
		},
		Server: ServerConfig{
			ListenAddress:          "127.0.0.1:8080",
			ShutdownTimeoutSeconds: 5,
		},
		Storage: StorageConfig{
			Enabled:       true,
			Path:          "~/.toolora-search/history.db",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SearchOptions converts the search section into index options.
func (c *Config) SearchOptions() search.Options {
	opts := search.DefaultOptions()
	opts.MinQueryLength = c.Search.MinQueryLength
	opts.MaxResults = c.Search.MaxResults
	opts.FuzzyMaxDistance = c.Search.FuzzyMaxDistance
	opts.ExactWeight = c.Search.ExactWeight
	opts.PartialWeight = c.Search.PartialWeight
	opts.Fusion = c.FusionConfig()
	return opts
}

// FusionConfig returns the hybrid engine weights.
func (c *Config) FusionConfig() search.FusionConfig {
	return search.FusionConfig{
		InvertedWeight: c.Search.HybridInvertedWeight,
		BM25Weight:     c.Search.HybridBM25Weight,
	}
}

// GetDefaultConfigPath returns the path to ~/.toolora-search.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".toolora-search.json"), nil
}
