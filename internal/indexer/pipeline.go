package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/llm"
	"bookrag-ai/internal/source"
	"bookrag-ai/internal/storage"
	"bookrag-ai/internal/vectorstore"
)

// Ingestion run statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// IngestSummary describes one ingestion run.
type IngestSummary struct {
	TotalFiles   int        `json:"total_files"`
	TotalChunks  int        `json:"total_chunks"`
	SkippedFiles int        `json:"skipped_files"`
	FailedFiles  int        `json:"failed_files"`
	RemovedFiles int        `json:"removed_files"`
	Status       string     `json:"status"`
	IndexVersion string     `json:"index_version"`
	ChunkStats   ChunkStats `json:"chunk_stats"`
}

// Pipeline ingests a markdown tree into the vector index.
type Pipeline struct {
	scanner      *source.Scanner
	normalizer   *MarkdownNormalizer
	chunker      *Chunker
	documents    storage.DocumentStore
	embedder     llm.Embedder
	store        vectorstore.VectorStore
	collection   string
	indexVersion string
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	scanner *source.Scanner,
	normalizer *MarkdownNormalizer,
	chunker *Chunker,
	documents storage.DocumentStore,
	embedder llm.Embedder,
	store vectorstore.VectorStore,
	collection string,
) *Pipeline {
	return &Pipeline{
		scanner:      scanner,
		normalizer:   normalizer,
		chunker:      chunker,
		documents:    documents,
		embedder:     embedder,
		store:        store,
		collection:   collection,
		indexVersion: IndexVersion(embedder.ModelName(), embedder.Dimension(), chunker.MaxSize(), chunker.overlap),
	}
}

// fileResult is the output of processing one document.
type fileResult struct {
	record   storage.DocumentRecord
	chunks   []ContentChunk
	points   []vectorstore.Point
	staleIDs []string
}

// IngestAll scans root, chunks and embeds every changed document and writes
// the resulting points to the index in a single upsert. A file that fails is
// logged and counted, and the run continues with the next one. Unchanged files
// are skipped unless force is set.
func (p *Pipeline) IngestAll(ctx context.Context, root string, force bool) (*IngestSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan source root: %w", err)
	}
	logger.InfoContext(ctx, "starting ingestion", "root", root, "files", len(docs), "force", force)

	summary := &IngestSummary{
		TotalFiles:   len(docs),
		IndexVersion: p.indexVersion,
	}

	var (
		points    []vectorstore.Point
		staleIDs  []string
		allChunks []ContentChunk
		records   []storage.DocumentRecord
	)
	scanned := make(map[string]struct{}, len(docs))

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scanned[doc.SourceURL] = struct{}{}

		result, err := p.processFile(ctx, doc, force)
		if err != nil {
			logger.ErrorContext(ctx, "failed to process file", "rel_path", doc.RelPath, "error", err)
			summary.FailedFiles++
			continue
		}
		if result == nil {
			summary.SkippedFiles++
			continue
		}

		points = append(points, result.points...)
		staleIDs = append(staleIDs, result.staleIDs...)
		allChunks = append(allChunks, result.chunks...)
		records = append(records, result.record)
		logger.InfoContext(ctx, "processed file", "rel_path", doc.RelPath, "chunks", len(result.chunks))
	}

	removed, err := p.removedDocuments(ctx, scanned)
	if err != nil {
		return nil, err
	}
	for _, rec := range removed {
		staleIDs = append(staleIDs, pointIDs(rec.SourceURL, 0, rec.ChunkCount)...)
	}

	if len(points) > 0 {
		if err := p.store.Upsert(ctx, p.collection, points); err != nil {
			return nil, fmt.Errorf("failed to store chunks: %w", err)
		}
	} else {
		logger.WarnContext(ctx, "no chunks to store")
	}

	if len(staleIDs) > 0 {
		if err := p.store.Delete(ctx, p.collection, staleIDs); err != nil {
			return nil, fmt.Errorf("failed to delete stale chunks: %w", err)
		}
	}

	for i := range records {
		if err := p.documents.Upsert(ctx, &records[i]); err != nil {
			logger.WarnContext(ctx, "failed to record document", "source_url", records[i].SourceURL, "error", err)
		}
	}
	for _, rec := range removed {
		if err := p.documents.Delete(ctx, rec.SourceURL); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "failed to forget removed document", "source_url", rec.SourceURL, "error", err)
		}
	}

	summary.TotalChunks = len(allChunks)
	summary.RemovedFiles = len(removed)
	summary.ChunkStats = ComputeChunkStats(allChunks)
	summary.Status = StatusSuccess
	if summary.FailedFiles > 0 {
		summary.Status = StatusPartial
	}

	logger.InfoContext(ctx, "ingestion completed",
		"total_files", summary.TotalFiles,
		"total_chunks", summary.TotalChunks,
		"skipped_files", summary.SkippedFiles,
		"failed_files", summary.FailedFiles,
		"removed_files", summary.RemovedFiles,
		"status", summary.Status,
	)
	return summary, nil
}

// processFile returns nil without error when the document is unchanged and was
// indexed with the current index version.
func (p *Pipeline) processFile(ctx context.Context, doc source.Document, force bool) (*fileResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	content, err := os.ReadFile(doc.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", doc.AbsPath, err)
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	existing, err := p.documents.Get(ctx, doc.SourceURL)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}
	if existing != nil && !force && existing.Hash == hash && existing.IndexVersion == p.indexVersion {
		logger.DebugContext(ctx, "skipping unchanged file", "rel_path", doc.RelPath)
		return nil, nil
	}

	normalized := p.normalizer.Normalize(content, doc.RelPath)
	chunks := p.chunker.Chunk(normalized.Body, doc.SourceURL, normalized.Title, doc.HierarchyPath)

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts, llm.TaskTypeDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:      PointID(chunk.ID),
			Vec:     vectors[i],
			Payload: p.payload(chunk),
		}
	}

	result := &fileResult{
		record: storage.DocumentRecord{
			SourceURL:    doc.SourceURL,
			RelPath:      doc.RelPath,
			Title:        normalized.Title,
			Hash:         hash,
			ChunkCount:   len(chunks),
			IndexVersion: p.indexVersion,
		},
		chunks: chunks,
		points: points,
	}
	if existing != nil && existing.ChunkCount > len(chunks) {
		result.staleIDs = pointIDs(doc.SourceURL, len(chunks), existing.ChunkCount)
	}
	return result, nil
}

func (p *Pipeline) payload(chunk ContentChunk) map[string]any {
	return map[string]any{
		"content_id":     uuid.New().String(),
		"chunk_id":       chunk.ID,
		"source_url":     chunk.SourceURL,
		"hierarchy_path": chunk.HierarchyPath,
		"title":          chunk.Title,
		"chunk_text":     chunk.Text,
		"metadata":       chunk.Metadata.Map(),
		"index_version":  p.indexVersion,
	}
}

// removedDocuments returns recorded documents that were not found by the scan.
func (p *Pipeline) removedDocuments(ctx context.Context, scanned map[string]struct{}) ([]storage.DocumentRecord, error) {
	known, err := p.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var removed []storage.DocumentRecord
	for _, rec := range known {
		if _, ok := scanned[rec.SourceURL]; !ok {
			removed = append(removed, rec)
		}
	}
	return removed, nil
}

// pointIDs returns the point IDs of chunks [from, to) of a document.
func pointIDs(sourceURL string, from, to int) []string {
	ids := make([]string, 0, to-from)
	for n := from; n < to; n++ {
		ids = append(ids, PointID(ChunkID(sourceURL, n)))
	}
	return ids
}
