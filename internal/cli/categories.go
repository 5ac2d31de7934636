package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/catalog"
)

// categoryCount is a category with the number of tools it holds.
type categoryCount struct {
	catalog.Category
	Count int `json:"count"`
}

// NewCategoriesCmd creates the 'categories' command.
func NewCategoriesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the catalog categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, withoutStorage, func(a *app.App, _ *zap.Logger) error {
				return runCategories(cmd.OutOrStdout(), a.Catalog(), jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runCategories(w io.Writer, cat *catalog.Catalog, jsonOutput bool) error {
	counts := cat.CategoryCounts()

	out := make([]categoryCount, 0, len(cat.Categories()))
	for _, c := range cat.Categories() {
		out = append(out, categoryCount{Category: c, Count: counts[c.ID]})
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Categories (%d):\n\n", len(out))
	for _, c := range out {
		fmt.Fprintf(w, "  %-10s %-22s %3d tools\n", c.ID, c.Name, c.Count)
	}
	fmt.Fprintln(w)
	return nil
}
