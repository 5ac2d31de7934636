package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/config"
)

// NewSearchCmd creates the 'search' command.
func NewSearchCmd() *cobra.Command {
	var limit int
	var jsonOutput bool
	var engine string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the tool catalog",
		Long: `Rank catalog tools against a free-text query.

Every query word is compared with each indexed term: exact matches score
highest, substring matches next, and small typos still earn a bonus.`,
		Example: `  toolora-search search pdf merge
  toolora-search search "backgrond remover"
  toolora-search search qr --engine hybrid --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			override := func(cfg *config.Config) {
				if engine != "" {
					cfg.Search.Engine = engine
				}
			}
			return withApp(cmd, override, func(a *app.App, _ *zap.Logger) error {
				return runSearch(cmd.OutOrStdout(), a, query, limit, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of results (default: search.maxResults)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "Search engine: inverted, bm25 or hybrid")

	return cmd
}

// runSearch answers one query and prints the ranked tools.
func runSearch(w io.Writer, a *app.App, query string, limit int, jsonOutput bool) error {
	outcome := a.Search(query, limit)

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	switch outcome.Status {
	case app.StatusNoQuery:
		fmt.Fprintf(w, "Type at least %d characters to search.\n", a.Config().Search.MinQueryLength)
		return nil
	case app.StatusNoResults:
		fmt.Fprintf(w, "No tools found for %q.\n", query)
		fmt.Fprintln(w, "Try different keywords or browse with 'toolora-search list'.")
		return nil
	}

	fmt.Fprintf(w, "Results for %q (%d):\n\n", query, len(outcome.Results))
	for i, r := range outcome.Results {
		fmt.Fprintf(w, "  %d. %s  [%s]  score %s\n", i+1, r.Record.DisplayName, r.Record.ID, formatScore(r.Score))
		if r.Record.Description != "" {
			fmt.Fprintf(w, "     %s\n", r.Record.Description)
		}
		fmt.Fprintf(w, "     %s · %s\n", r.Record.CategoryDisplayName, r.Record.URL())
	}
	fmt.Fprintln(w)
	return nil
}

// formatScore prints integer scores without decimals.
func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.3f", score)
}
