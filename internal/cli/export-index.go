package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/toolora/toolora-search/internal/app"
	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

// Export contents.
const (
	exportCatalog = "catalog"
	exportIndex   = "index"
)

// ToolEntry is one catalog record in the exported file.
type ToolEntry struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	CategoryName string   `json:"categoryName"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	URL          string   `json:"url"`
}

// TermEntry is one inverted index key with the tools filed under it.
type TermEntry struct {
	Term  string   `json:"term"`
	Tools []string `json:"tools"`
}

// NewExportIndexCmd creates the export-index command.
func NewExportIndexCmd() *cobra.Command {
	var format string
	var output string
	var what string

	cmd := &cobra.Command{
		Use:   "export-index",
		Short: "Export the catalog or search index for grep/jq",
		Long: `Generate ~/.toolora-search-index.jsonl for offline grep/jq searching.

With --what catalog (default) each line is one tool with its keywords.
With --what index each line is one search term and the tools it matches,
exactly as the inverted index stores them.

Default output: ~/.toolora-search-index.jsonl
Default format: JSONL (one entry per line)`,
		Example: `  # Export to default location
  toolora-search export-index

  # Export the inverted index as a JSON array
  toolora-search export-index --what index --format json

  # Custom output path
  toolora-search export-index --output ./tools.jsonl

Grep usage examples:
  # Find PDF tools
  grep '"category":"pdf"' ~/.toolora-search-index.jsonl | jq -r '.id'

  # Search descriptions
  grep -i "compress" ~/.toolora-search-index.jsonl | jq -r '.name'

  # Count tools per category
  jq -r '.category' ~/.toolora-search-index.jsonl | sort | uniq -c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if what != exportCatalog && what != exportIndex {
				return fmt.Errorf("invalid --what %q: use catalog or index", what)
			}
			if format != "json" && format != "jsonl" {
				return fmt.Errorf("invalid --format %q: use json or jsonl", format)
			}
			return withApp(cmd, withoutStorage, func(a *app.App, _ *zap.Logger) error {
				return runExportIndex(cmd.OutOrStdout(), a.Catalog(), a.Config().SearchOptions(), what, format, output)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "jsonl", "Output format: json or jsonl")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: ~/.toolora-search-index.jsonl)")
	cmd.Flags().StringVar(&what, "what", exportCatalog, "What to export: catalog or index")

	return cmd
}

// runExportIndex writes the catalog or its index to output.
func runExportIndex(w io.Writer, cat *catalog.Catalog, opts search.Options, what, format, output string) error {
	if output == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		ext := ".jsonl"
		if format == "json" {
			ext = ".json"
		}
		output = filepath.Join(home, ".toolora-search-index"+ext)
	}

	// Acquire file lock to prevent concurrent writes
	lockFile, err := acquireFileLock(output)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer releaseFileLock(lockFile)

	var n int
	if what == exportIndex {
		entries := termEntries(search.BuildIndex(cat.Records(), search.WithOptions(opts)))
		n, err = len(entries), writeIndex(entries, output, format)
	} else {
		entries := toolEntries(cat.Records())
		n, err = len(entries), writeIndex(entries, output, format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Exported %d %s entries to %s\n", n, what, output)
	return nil
}

func toolEntries(records []catalog.ToolRecord) []ToolEntry {
	out := make([]ToolEntry, len(records))
	for i, r := range records {
		out[i] = ToolEntry{
			ID:           r.ID,
			Name:         r.DisplayName,
			Category:     r.Category,
			CategoryName: r.CategoryDisplayName,
			Description:  r.Description,
			Keywords:     r.Keywords,
			URL:          r.URL(),
		}
	}
	return out
}

func termEntries(ix *search.Index) []TermEntry {
	keys := ix.Keys()
	out := make([]TermEntry, len(keys))
	for i, k := range keys {
		out[i] = TermEntry{Term: k, Tools: ix.IDs(k)}
	}
	return out
}

// writeIndex writes entries to a file as a JSON array or one object per line.
func writeIndex[T any](entries []T, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)

	if format == "json" {
		// JSON array format
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}
		return nil
	}

	// JSONL format (one per line)
	for _, e := range entries {
		if err := encoder.Encode(e); err != nil {
			return fmt.Errorf("failed to encode entry: %w", err)
		}
	}
	return nil
}

// acquireFileLock acquires an exclusive lock on the index file.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire exclusive lock (non-blocking)
	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another export in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the file lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()

	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()

	return os.Remove(lockPath)
}
