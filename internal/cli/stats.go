package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/config"
	"github.com/toolora/toolora-search/internal/storage"
)

const defaultStatsDays = 7

// statsReport is the JSON form of 'stats'.
type statsReport struct {
	Enabled bool                  `json:"enabled"`
	Days    int                   `json:"days"`
	Path    string                `json:"path,omitempty"`
	Summary storage.SearchSummary `json:"summary"`
}

// NewStatsCmd creates the 'stats' command group for local usage history.
func NewStatsCmd() *cobra.Command {
	var days int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show search and tool usage statistics",
		Long: `Summarize the local usage history: how many searches were answered,
how many found nothing, which engines answered them and how many tools were
opened from the results.

Query text is never stored, only a SHA256 hash of it.`,
		Example: `  toolora-search stats
  toolora-search stats --days 30 --json
  toolora-search stats popular
  toolora-search stats clear`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, nil, func(a *app.App, _ *zap.Logger) error {
				return runStats(cmd.OutOrStdout(), a, days, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", defaultStatsDays, "Summarize the last N days")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	cmd.AddCommand(newStatsPopularCmd())
	cmd.AddCommand(newStatsClearCmd())
	cmd.AddCommand(newStatsTrackingCmd("enable", true))
	cmd.AddCommand(newStatsTrackingCmd("disable", false))

	return cmd
}

// runStats prints the search summary for the last days.
func runStats(w io.Writer, a *app.App, days int, jsonOutput bool) error {
	if days <= 0 {
		days = defaultStatsDays
	}

	summary, err := a.Stats(time.Now().AddDate(0, 0, -days))
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	cfg := a.Config()
	if jsonOutput {
		report := statsReport{Enabled: a.Store() != nil, Days: days, Summary: summary}
		if report.Enabled {
			report.Path = cfg.Storage.Path
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(w, "Usage Statistics")
	fmt.Fprintln(w, "================")
	if a.Store() == nil {
		fmt.Fprintln(w, "Tracking: disabled")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Note: Run 'toolora-search stats enable' to record searches")
		return nil
	}

	fmt.Fprintf(w, "Tracking:        enabled (%s)\n", cfg.Storage.Path)
	fmt.Fprintf(w, "Window:          last %d days\n", days)
	fmt.Fprintf(w, "Searches:        %d\n", summary.Total)
	fmt.Fprintf(w, "No results:      %d\n", summary.ZeroResults)
	fmt.Fprintf(w, "Tools opened:    %d\n", summary.Selections)
	for _, engine := range slices.Sorted(maps.Keys(summary.ByEngine)) {
		fmt.Fprintf(w, "  %-14s %d searches\n", engine+":", summary.ByEngine[engine])
	}
	return nil
}

// newStatsPopularCmd lists the most used tools.
func newStatsPopularCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most used tools",
		Long: `Rank tools by how often and how recently they were opened during the
last week. When there is little history the list is topped up with the
catalog's featured tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, nil, func(a *app.App, _ *zap.Logger) error {
				return runStatsPopular(cmd.OutOrStdout(), a, limit, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of tools to list")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runStatsPopular(w io.Writer, a *app.App, limit int, jsonOutput bool) error {
	tools := a.Popular(limit)

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	fmt.Fprintf(w, "Popular tools (%d):\n\n", len(tools))
	for i, t := range tools {
		if t.Selections > 0 {
			fmt.Fprintf(w, "  %2d. %-30s %3d opens  score %.2f\n", i+1, t.Record.DisplayName, t.Selections, t.Score)
			continue
		}
		fmt.Fprintf(w, "  %2d. %-30s featured\n", i+1, t.Record.DisplayName)
	}
	fmt.Fprintln(w)
	return nil
}

// newStatsClearCmd deletes all recorded history.
func newStatsClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, nil, func(a *app.App, _ *zap.Logger) error {
				return runStatsClear(cmd.InOrStdin(), cmd.OutOrStdout(), a.Store(), yes)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runStatsClear(in io.Reader, w io.Writer, store storage.Storage, yes bool) error {
	if store == nil {
		fmt.Fprintln(w, "Tracking is disabled, nothing to clear")
		return nil
	}

	if !yes {
		fmt.Fprint(w, "This will delete all search and usage history. Continue? (y/N): ")
		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(w, "Cancelled")
			return nil
		}
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintln(w, "History cleared successfully")
	return nil
}

// newStatsTrackingCmd turns usage tracking on or off in the config file.
func newStatsTrackingCmd(use string, enabled bool) *cobra.Command {
	short := "Turn on usage tracking"
	if !enabled {
		short = "Turn off usage tracking"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return runStatsTracking(cmd.OutOrStdout(), path, enabled)
		},
	}
}

func runStatsTracking(w io.Writer, path string, enabled bool) error {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Storage.Enabled = enabled
	if err := config.Save(cfg, path, nil); err != nil {
		return err
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Fprintf(w, "✓ Usage tracking %s in %s\n", state, path)
	if !enabled {
		fmt.Fprintln(w, "Existing history is kept. Run 'toolora-search stats clear' to delete it.")
	}
	return nil
}
