package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. TOOLORA_SEARCH_ENGINE.
const EnvPrefix = "TOOLORA"

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType(path))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	d := NewConfig()
	v.SetDefault("search.engine", d.Search.Engine)
	v.SetDefault("search.minQueryLength", d.Search.MinQueryLength)
	v.SetDefault("search.maxResults", d.Search.MaxResults)
	v.SetDefault("search.fuzzyMaxDistance", d.Search.FuzzyMaxDistance)
	v.SetDefault("search.exactWeight", d.Search.ExactWeight)
	v.SetDefault("search.partialWeight", d.Search.PartialWeight)
	v.SetDefault("search.cacheSize", d.Search.CacheSize)
	v.SetDefault("search.hybridInvertedWeight", d.Search.HybridInvertedWeight)
	v.SetDefault("search.hybridBM25Weight", d.Search.HybridBM25Weight)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("server.listenAddress", d.Server.ListenAddress)
	v.SetDefault("server.shutdownTimeoutSeconds", d.Server.ShutdownTimeoutSeconds)
	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.retentionDays", d.Storage.RetentionDays)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Load reads the configuration from the default path. A missing file yields
// the defaults.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadOrDefault(configPath)
}

// LoadOrDefault reads path like LoadFrom, but returns the defaults (with
// environment overrides applied) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFrom(path)
	var notFound *ConfigNotFoundError
	if errors.As(err, &notFound) {
		return decode(newViper(path), path)
	}
	return cfg, err
}

// LoadFrom reads config with enhanced error handling
func LoadFrom(path string) (*Config, error) {
	// .env values become overrides; a missing .env is fine
	_ = godotenv.Load()

	// Check file existence first
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'toolora-search config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	// Check read permissions
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	v := newViper(path)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("parse error: %v", err),
			Hint:    "Restore from .bak file if available",
			Err:     err,
		}
	}

	return decode(v, path)
}

func decode(v *viper.Viper, path string) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("decode error: %v", err),
			Hint:    "Check field types against 'toolora-search config show'",
			Err:     err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the listed values or remove them to use defaults",
			Err:     err,
		}
	}

	return &cfg, nil
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return "" // Not applicable on Windows
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
