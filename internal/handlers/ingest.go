package handlers

import (
	"net/http"
	"time"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/indexer"
	"bookrag-ai/internal/service"
)

// IngestHandler handles HTTP requests for re-ingesting book content.
type IngestHandler struct {
	contentService service.ContentService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(contentService service.ContentService) *IngestHandler {
	return &IngestHandler{
		contentService: contentService,
	}
}

// IngestResponse is returned when a background ingestion is accepted.
type IngestResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// IngestStatusResponse reports the current and last ingestion run.
type IngestStatusResponse struct {
	Running    bool                   `json:"running"`
	Last       *indexer.IngestSummary `json:"last,omitempty"`
	LastError  string                 `json:"last_error,omitempty"`
	FinishedAt *time.Time             `json:"finished_at,omitempty"`
}

// ServeHTTP triggers an ingestion pass.
//
// ?force=true re-embeds unchanged files. ?wait=true runs the pass in the
// request and returns its summary; otherwise the pass runs in the background
// and 202 Accepted is returned.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	force := r.URL.Query().Get("force") == "true"
	wait := r.URL.Query().Get("wait") == "true"
	logger.InfoContext(ctx, "ingestion requested via API", "force", force, "wait", wait)

	if wait {
		summary, err := h.contentService.Ingest(ctx, force)
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to ingest content")
			return
		}
		writeJSON(ctx, w, http.StatusOK, summary)
		return
	}

	if err := h.contentService.StartIngest(ctx, force); err != nil {
		handleServiceError(ctx, w, err, "Failed to start ingestion")
		return
	}

	message := "Ingestion started. Check GET /api/v1/content/ingest for progress."
	if force {
		message = "Forced ingestion started. Every file will be re-embedded. Check GET /api/v1/content/ingest for progress."
	}
	writeJSON(ctx, w, http.StatusAccepted, IngestResponse{
		Message: message,
		Status:  "accepted",
	})
}

// Status handles GET /content/ingest.
func (h *IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := h.contentService.IngestStatus(ctx)
	resp := IngestStatusResponse{
		Running:   status.Running,
		Last:      status.Last,
		LastError: status.LastError,
	}
	if !status.FinishedAt.IsZero() {
		finished := status.FinishedAt
		resp.FinishedAt = &finished
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
