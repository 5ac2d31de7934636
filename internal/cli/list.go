package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/config"
)

// NewListCmd creates the 'list' command for listing catalog tools.
func NewListCmd() *cobra.Command {
	var jsonOutput bool
	var category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tools in the catalog",
		Long:    `Display every catalog tool grouped by category, in catalog order.`,
		Example: `  toolora-search list
  toolora-search ls
  toolora-search list --category pdf
  toolora-search list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, withoutStorage, func(a *app.App, _ *zap.Logger) error {
				return runList(cmd.OutOrStdout(), a.Catalog(), category, jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list tools of this category")

	return cmd
}

// withoutStorage turns usage tracking off for read-only commands.
func withoutStorage(cfg *config.Config) {
	cfg.Storage.Enabled = false
}

// runList prints the catalog, optionally filtered to one category.
func runList(w io.Writer, cat *catalog.Catalog, category string, jsonOutput bool) error {
	records := cat.Records()
	if category != "" {
		records = cat.ByCategory(category)
		if len(records) == 0 {
			return fmt.Errorf("unknown or empty category %q (see 'toolora-search categories')", category)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	fmt.Fprintf(w, "Catalog tools (%d):\n", len(records))

	current := ""
	for _, r := range records {
		if r.Category != current {
			current = r.Category
			fmt.Fprintf(w, "\n  %s\n", r.CategoryDisplayName)
		}
		fmt.Fprintf(w, "    %-28s %s\n", r.ID, r.DisplayName)
	}
	fmt.Fprintln(w)

	return nil
}
