/*
Package main is the entry point for the toolora-search CLI.

toolora-search indexes the Toolora tool catalog and answers free-text queries
with exact, partial and typo-tolerant matching, from the terminal or through
a small JSON API.

Usage:
	toolora-search [command]

Available Commands:
	search        Search the tool catalog
	list          List the tools in the catalog
	categories    List the catalog categories
	validate      Validate a catalog file
	export-index  Export the catalog or search index for grep/jq
	benchmark     Measure search quality and latency
	serve         Run the JSON search API
	stats         Show search and tool usage statistics
	config        Create or inspect the configuration file
	version       Show version information

Examples:
	# Find tools by name, keyword or with a typo
	toolora-search search "merge pdf"
	toolora-search search backgrond

	# Serve the API with catalog hot reload
	toolora-search serve --catalog ./catalog.yaml --watch
*/
package main

import (
	"fmt"
	"os"

	"github.com/toolora/toolora-search/internal/cli"
	"github.com/toolora/toolora-search/internal/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
)

func main() {
	if buildVersion != "dev" {
		version.Version, version.Commit, version.Date = buildVersion, commit, date
	}

	rootCmd := cli.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
