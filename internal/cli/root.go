/*
Package cli implements the toolora-search commands.

Each command lives in its own file as NewXxxCmd plus a runXxx function that
takes its dependencies explicitly, so commands can be exercised in tests
without touching the user's home directory.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/config"
	"github.com/toolora/toolora-search/internal/telemetry"
	"github.com/toolora/toolora-search/internal/version"
)

const configFlag = "config"

// NewRootCmd builds the toolora-search command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toolora-search",
		Short: "Search the Toolora tool catalog",
		Long: `toolora-search indexes the Toolora tool catalog and answers free-text
queries with exact, partial and typo-tolerant matching.

It can be used directly from the terminal, or run as a small JSON API
that backs the site's search box.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(configFlag, "", "Config file (default: ~/.toolora-search.json)")

	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewCategoriesCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewExportIndexCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// configPath returns the --config value, or the default path.
func configPath(cmd *cobra.Command) (string, error) {
	if f := cmd.Flags().Lookup(configFlag); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	return config.GetDefaultConfigPath()
}

// loadConfig reads the configuration selected by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// withApp loads config, applies overrides, and runs fn against a fresh app.
func withApp(cmd *cobra.Command, override func(*config.Config), fn func(*app.App, *zap.Logger) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if override != nil {
		override(cfg)
	}

	logger, err := telemetry.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer telemetry.Sync(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a, logger)
}
