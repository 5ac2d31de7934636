package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

// errCatalogInvalid is returned by --strict when records were skipped.
var errCatalogInvalid = errors.New("catalog has malformed records")

// NewValidateCmd creates the 'validate' command for checking a catalog file.
func NewValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [catalog-file]",
		Short: "Validate a catalog file",
		Long: `Load a catalog file, report every record that would be skipped, and show
how large the resulting search index is.

Without an argument the configured catalog (catalog.path) is checked, or the
builtin catalog when none is configured.`,
		Example: `  toolora-search validate
  toolora-search validate ./catalog.yaml --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.Catalog.Path
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(cmd.OutOrStdout(), path, strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any record is skipped")

	return cmd
}

// runValidate prints the validation report for the catalog at path.
func runValidate(w io.Writer, path string, strict bool) error {
	res, err := catalog.Load(path, zap.NewNop())
	if err != nil {
		return fmt.Errorf("catalog error: %w", err)
	}

	source := path
	if source == "" {
		source = "builtin"
	}

	report := res.Report
	fmt.Fprintf(w, "✓ Catalog: %s\n", source)
	fmt.Fprintf(w, "✓ Categories: %d\n", len(res.Catalog.Categories()))
	fmt.Fprintf(w, "✓ Records accepted: %d of %d\n", report.Accepted, report.Total)

	for _, e := range report.Skipped {
		fmt.Fprintf(w, "✗ %s\n", e.Error())
	}

	ix := search.BuildIndex(res.Catalog.Records())
	fmt.Fprintf(w, "✓ Index keys: %d\n", ix.KeyCount())

	if strict && !report.OK() {
		return fmt.Errorf("%w: %d skipped", errCatalogInvalid, len(report.Skipped))
	}
	return nil
}
