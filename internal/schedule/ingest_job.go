package schedule

import (
	"context"
	"errors"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/indexer"
	"bookrag-ai/internal/service"
)

// Ingester runs one ingestion pass.
type Ingester interface {
	Ingest(ctx context.Context, force bool) (*indexer.IngestSummary, error)
}

// IngestJob re-ingests the book content on a schedule.
type IngestJob struct {
	ingester Ingester
	force    bool
}

// NewIngestJob creates an IngestJob. Unchanged files are skipped unless force is set.
func NewIngestJob(ingester Ingester, force bool) *IngestJob {
	return &IngestJob{ingester: ingester, force: force}
}

// Name implements Job.
func (j *IngestJob) Name() string {
	return "ingest"
}

// Run implements Job. A pass already started through the API is not an error.
func (j *IngestJob) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	summary, err := j.ingester.Ingest(ctx, j.force)
	if errors.Is(err, service.ErrIngestInProgress) {
		logger.InfoContext(ctx, "ingestion already running, skipping scheduled pass")
		return nil
	}
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "scheduled ingestion completed",
		"status", summary.Status,
		"total_chunks", summary.TotalChunks,
		"skipped_files", summary.SkippedFiles,
		"failed_files", summary.FailedFiles,
	)
	return nil
}
