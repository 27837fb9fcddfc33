package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_content_service.go -package=mocks bookrag-ai/internal/service ContentService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingester.go -package=mocks bookrag-ai/internal/service Ingester

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/indexer"
	"bookrag-ai/internal/rag"
	"bookrag-ai/internal/vectorstore"
)

const (
	maxSearchQueryLength = 1000
	defaultSearchLimit   = 10
	maxSearchLimit       = 50
	searchContentLength  = 500
)

// Ingester runs an ingestion pass over a markdown tree.
type Ingester interface {
	IngestAll(ctx context.Context, root string, force bool) (*indexer.IngestSummary, error)
}

// SearchRequest is a semantic search over book content.
type SearchRequest struct {
	Query   string
	Limit   int // 0 means the default of 10
	Filters map[string]any
}

// SearchHit is one search result with its chunk text shortened for display.
type SearchHit struct {
	ID            string  `json:"id"`
	Score         float32 `json:"score"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	SourceURL     string  `json:"source_url"`
	HierarchyPath string  `json:"hierarchy_path"`
}

// SearchResponse is the outcome of a SearchRequest.
type SearchResponse struct {
	Query      string
	Results    []SearchHit
	Citations  []citation.Citation
	Confidence float64
}

// Stats describes the content index.
type Stats struct {
	TotalVectors   int
	CollectionName string
}

// IngestStatus reports the current and most recent ingestion run.
type IngestStatus struct {
	Running    bool
	Last       *indexer.IngestSummary
	LastError  string
	FinishedAt time.Time
}

// ContentService searches and maintains the book content index.
type ContentService interface {
	// Search embeds the query and returns matching chunks with citations.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	// Stats returns the number of indexed vectors.
	Stats(ctx context.Context) (Stats, error)
	// Collections lists the collections in the vector index.
	Collections(ctx context.Context) ([]string, error)
	// Ingest runs an ingestion pass and waits for it to finish.
	Ingest(ctx context.Context, force bool) (*indexer.IngestSummary, error)
	// StartIngest runs an ingestion pass in the background.
	StartIngest(ctx context.Context, force bool) error
	// IngestStatus reports whether a pass is running and how the last one ended.
	IngestStatus(ctx context.Context) IngestStatus
	// Wait blocks until background passes started by StartIngest have finished
	// or ctx is done.
	Wait(ctx context.Context) error
}

// contentService implements ContentService.
type contentService struct {
	searcher   rag.Searcher
	store      vectorstore.VectorStore
	ingester   Ingester
	collection string
	sourceRoot string

	mu      sync.Mutex
	running bool
	status  IngestStatus
	wg      sync.WaitGroup
}

// NewContentService creates a new ContentService.
func NewContentService(searcher rag.Searcher, store vectorstore.VectorStore, ingester Ingester, collection, sourceRoot string) ContentService {
	return &contentService{
		searcher:   searcher,
		store:      store,
		ingester:   ingester,
		collection: collection,
		sourceRoot: sourceRoot,
	}
}

// Search runs a semantic search.
func (s *contentService) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := validateSearch(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid search request", "error", err)
		return SearchResponse{}, err
	}

	results, err := s.searcher.SearchContent(ctx, req.Query, req.Limit, req.Filters)
	if errors.Is(err, vectorstore.ErrUnsupportedFilter) {
		return SearchResponse{}, &ValidationError{Field: "filters", Message: err.Error()}
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to search content", "error", err)
		return SearchResponse{}, WrapExternal(err, "failed to search content")
	}

	hits := make([]SearchHit, len(results))
	raw := make([]vectorstore.SearchResult, len(results))
	for i, r := range results {
		hits[i] = SearchHit{
			ID:            r.ID,
			Score:         r.Score,
			Title:         r.Title,
			Content:       shorten(r.Content, searchContentLength),
			SourceURL:     r.SourceURL,
			HierarchyPath: r.HierarchyPath,
		}
		raw[i] = r.SearchResult
	}

	resp := SearchResponse{
		Query:      req.Query,
		Results:    hits,
		Citations:  citation.FromResults(raw, req.Query),
		Confidence: rag.Confidence(results),
	}
	logger.InfoContext(ctx, "content search served", "limit", req.Limit, "results", len(hits), "confidence", resp.Confidence)
	return resp, nil
}

func validateSearch(req SearchRequest) (SearchRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	if n := utf8.RuneCountInString(req.Query); n < 1 || n > maxSearchQueryLength {
		return req, &ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("must be between 1 and %d characters", maxSearchQueryLength),
		}
	}
	if req.Limit == 0 {
		req.Limit = defaultSearchLimit
	}
	if req.Limit < 1 || req.Limit > maxSearchLimit {
		return req, &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d", maxSearchLimit),
		}
	}
	return req, nil
}

// shorten cuts s to n characters and marks the cut with an ellipsis.
func shorten(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Stats counts the indexed vectors.
func (s *contentService) Stats(ctx context.Context) (Stats, error) {
	count, err := s.store.Count(ctx, s.collection)
	if err != nil {
		return Stats{}, WrapExternal(err, "failed to count vectors")
	}
	return Stats{TotalVectors: count, CollectionName: s.collection}, nil
}

// Collections lists the vector index collections.
func (s *contentService) Collections(ctx context.Context) ([]string, error) {
	names, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, WrapExternal(err, "failed to list collections")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Ingest runs one ingestion pass. Only one pass runs at a time.
func (s *contentService) Ingest(ctx context.Context, force bool) (*indexer.IngestSummary, error) {
	if !s.begin() {
		return nil, ErrIngestInProgress
	}
	return s.run(ctx, force)
}

// StartIngest starts a pass that outlives the caller's request.
func (s *contentService) StartIngest(ctx context.Context, force bool) error {
	if !s.begin() {
		return ErrIngestInProgress
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.run(context.WithoutCancel(ctx), force)
	}()
	return nil
}

// Wait waits for background ingestion to drain.
func (s *contentService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for ingestion: %w", ctx.Err())
	}
}

// IngestStatus returns a snapshot of the ingestion state.
func (s *contentService) IngestStatus(_ context.Context) IngestStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Running = s.running
	return status
}

func (s *contentService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *contentService) run(ctx context.Context, force bool) (*indexer.IngestSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "ingestion triggered", "root", s.sourceRoot, "force", force)

	summary, err := s.ingester.IngestAll(ctx, s.sourceRoot, force)

	s.mu.Lock()
	s.running = false
	s.status.FinishedAt = time.Now().UTC()
	s.status.Last = summary
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		logger.ErrorContext(ctx, "ingestion failed", "error", err)
		return nil, WrapError(err, "failed to ingest content")
	}
	return summary, nil
}
