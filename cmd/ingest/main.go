package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bookrag-ai/internal/app"
	"bookrag-ai/internal/config"
	"bookrag-ai/internal/indexer"
)

type options struct {
	root       string
	force      bool
	jsonOutput bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest book markdown into the vector index",
		Long: `Scans a markdown tree, chunks and embeds every changed file and
writes the chunks to the Qdrant collection. Files whose content hash
has not changed since the last run are skipped unless --force is given.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			slog.SetDefault(app.NewLogger(cfg, os.Stderr))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if opts.root == "" {
				opts.root = cfg.MarkdownSourcePath
			}
			summary, err := runIngest(ctx, cfg, opts)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), summary, opts.jsonOutput)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "markdown source directory (default MARKDOWN_SOURCE_PATH)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "re-embed files whose content has not changed")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the summary as JSON")
	return cmd
}

func runIngest(ctx context.Context, cfg *config.Config, opts options) (*indexer.IngestSummary, error) {
	components, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = components.Close()
	}()

	store, err := components.VectorStore(ctx)
	if err != nil {
		return nil, err
	}
	pipeline, err := components.Pipeline(store)
	if err != nil {
		return nil, err
	}
	return pipeline.IngestAll(ctx, opts.root, opts.force)
}

func printSummary(w io.Writer, summary *indexer.IngestSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	_, err := fmt.Fprintf(w, `Ingestion %s
  index version:  %s
  files:          %d (%d skipped, %d failed, %d removed)
  chunks:         %d
  chunk size:     min %d / mean %.1f / p95 %d / max %d
`,
		summary.Status,
		summary.IndexVersion,
		summary.TotalFiles, summary.SkippedFiles, summary.FailedFiles, summary.RemovedFiles,
		summary.TotalChunks,
		summary.ChunkStats.Min, summary.ChunkStats.Mean, summary.ChunkStats.P95, summary.ChunkStats.Max,
	)
	return err
}
