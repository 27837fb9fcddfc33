package handlers

import (
	"net/http"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/service"
)

// ContentHandler handles HTTP requests for content search and index statistics.
type ContentHandler struct {
	contentService service.ContentService
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
	}
}

// SearchRequest represents the HTTP request payload for content search.
type SearchRequest struct {
	Query   string         `json:"query"`
	Limit   int            `json:"limit,omitempty"`
	Filters map[string]any `json:"filters,omitempty"`
}

// SearchResponse represents the HTTP response payload for content search.
type SearchResponse struct {
	Query      string              `json:"query"`
	Results    []service.SearchHit `json:"results"`
	TotalCount int                 `json:"total_count"`
	Citations  []citation.Citation `json:"citations"`
	Confidence float64             `json:"confidence_score"`
}

// StatsResponse describes the content index.
type StatsResponse struct {
	TotalVectors   int    `json:"total_vectors"`
	CollectionName string `json:"collection_name"`
}

// CollectionsResponse lists vector index collections.
type CollectionsResponse struct {
	Collections []string `json:"collections"`
	Total       int      `json:"total"`
}

// Search handles POST /content/search.
func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.contentService.Search(ctx, service.SearchRequest{
		Query:   req.Query,
		Limit:   req.Limit,
		Filters: req.Filters,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search content")
		return
	}

	writeJSON(ctx, w, http.StatusOK, SearchResponse{
		Query:      resp.Query,
		Results:    resp.Results,
		TotalCount: len(resp.Results),
		Citations:  resp.Citations,
		Confidence: resp.Confidence,
	})
}

// Stats handles GET /content/stats.
func (h *ContentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.contentService.Stats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get content stats")
		return
	}
	writeJSON(ctx, w, http.StatusOK, StatsResponse{
		TotalVectors:   stats.TotalVectors,
		CollectionName: stats.CollectionName,
	})
}

// Collections handles GET /content/collections.
func (h *ContentHandler) Collections(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names, err := h.contentService.Collections(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get collections")
		return
	}
	writeJSON(ctx, w, http.StatusOK, CollectionsResponse{
		Collections: names,
		Total:       len(names),
	})
}
