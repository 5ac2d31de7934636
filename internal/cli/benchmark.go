package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toolora/toolora-search/internal/benchmark"
	"github.com/toolora/toolora-search/internal/catalog"
	"github.com/toolora/toolora-search/internal/search"
)

const engineAll = "all"

// NewBenchmarkCmd creates the 'benchmark' command for ranking and latency tests.
func NewBenchmarkCmd() *cobra.Command {
	var jsonOutput bool
	var engine string
	var iterations int
	var queries []string

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure search quality and latency",
		Long: `Replay a set of representative queries against one or all search engines.

For every query the benchmark records how many tools were found, which tool
ranked first, and the average latency over all iterations. The summary shows
the hit rate (queries with at least one result) and, for queries with a known
best answer, how often that tool ranked first.`,
		Example: `  # Benchmark the configured engine
  toolora-search benchmark

  # Compare all engines
  toolora-search benchmark --engine all

  # Custom queries as JSON
  toolora-search benchmark -q "pdf merge" -q "qr code" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if engine == "" {
				engine = cfg.Search.Engine
			}

			res, err := catalog.Load(cfg.Catalog.Path, zap.NewNop())
			if err != nil {
				return err
			}

			set := benchmark.DefaultQueries
			if len(queries) > 0 {
				set = make([]benchmark.Query, len(queries))
				for i, q := range queries {
					set[i] = benchmark.Query{Text: q}
				}
			}

			return runBenchmark(cmd.OutOrStdout(), res.Catalog.Records(), cfg.SearchOptions(), engine, set, iterations, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "Engine to benchmark: inverted, bm25, hybrid or all")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", benchmark.DefaultIterations, "Number of iterations per query")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query to run (repeatable, default: builtin set)")

	return cmd
}

// runBenchmark runs the query set against each selected engine.
func runBenchmark(w io.Writer, records []catalog.ToolRecord, opts search.Options, engine string, queries []benchmark.Query, iterations int, jsonOutput bool) error {
	engines := []string{engine}
	if engine == engineAll {
		engines = search.Engines
	} else if !slices.Contains(search.Engines, engine) {
		return fmt.Errorf("unknown engine %q: use inverted, bm25, hybrid or all", engine)
	}

	reports := make([]*benchmark.Report, 0, len(engines))
	for _, name := range engines {
		s, err := search.NewSearcher(name, records, search.WithOptions(opts))
		if err != nil {
			return fmt.Errorf("failed to build %s engine: %w", name, err)
		}
		reports = append(reports, benchmark.Run(s, name, queries, iterations))
		if err := search.Close(s); err != nil {
			return err
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	fmt.Fprintln(w)
	for _, r := range reports {
		fmt.Fprint(w, benchmark.FormatReport(r))
		fmt.Fprintln(w)
	}
	return nil
}
