package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/vectorstore"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	collectionName     string
	version            string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collectionName, version string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		collectionName:     collectionName,
		version:            version,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`

	Checks map[string]string `json:"checks"`

	// Only present when unhealthy
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP reports the health of the API and the vector index.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	var issues []string

	if h.checkVectorStore(checkCtx, logger) {
		checks["vector_store"] = "ok"
	} else {
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	}

	if h.checkCollection(checkCtx, logger) {
		checks["collection"] = "ok"
	} else {
		checks["collection"] = "error"
		issues = append(issues, "collection_unavailable")
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, HealthResponse{
		Status:    status,
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	})
}

// checkVectorStore checks if the vector store is reachable.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	version, err := h.vectorStore.Health(ctx)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	logger.DebugContext(ctx, "vector store reachable", "server_version", version)
	return true
}

// checkCollection checks that the content collection exists.
func (h *HealthHandler) checkCollection(ctx context.Context, logger *slog.Logger) bool {
	info, err := h.vectorStore.CollectionInfo(ctx, h.collectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store collection unavailable", "collection", h.collectionName, "error", err)
		return false
	}
	logger.DebugContext(ctx, "collection available", "collection", info.Name, "points", info.PointsCount)
	return true
}
