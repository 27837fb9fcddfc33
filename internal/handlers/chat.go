package handlers

import (
	"net/http"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/rag"
	"bookrag-ai/internal/service"
)

// ChatHandler handles HTTP requests for book questions.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// ChatRequest represents the HTTP request payload for a question.
// query_mode is accepted as an alias of mode.
type ChatRequest struct {
	Query        string `json:"query"`
	SessionID    string `json:"session_id,omitempty"`
	Mode         string `json:"mode,omitempty"`
	QueryMode    string `json:"query_mode,omitempty"`
	SelectedText string `json:"selected_text,omitempty"`
}

// ChatMessage is the assistant message of a completion choice.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice is one completion choice.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatResponse represents the HTTP response payload for a question.
// It follows the chat completion shape with citations and retrieval details added.
type ChatResponse struct {
	ID             string              `json:"id"`
	Object         string              `json:"object"`
	Created        int64               `json:"created"`
	Model          string              `json:"model"`
	Choices        []ChatChoice        `json:"choices"`
	Usage          service.Usage       `json:"usage"`
	Citations      []citation.Citation `json:"citations"`
	Confidence     float64             `json:"confidence_score"`
	QueryMode      rag.Mode            `json:"query_mode"`
	SessionID      string              `json:"session_id"`
	ResponseTimeMS int64               `json:"response_time_ms"`
	Scope          *rag.ScopeReport    `json:"scope,omitempty"`
}

// ServeHTTP handles HTTP requests for book questions.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = req.QueryMode
	}

	resp, err := h.chatService.Query(ctx, service.QueryRequest{
		Query:        req.Query,
		Mode:         rag.Mode(mode),
		SelectedText: req.SelectedText,
		SessionID:    req.SessionID,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeJSON(ctx, w, http.StatusOK, ChatResponse{
		ID:      resp.ID,
		Object:  "chat.completion",
		Created: resp.Created.Unix(),
		Model:   resp.Model,
		Choices: []ChatChoice{{
			Index:        0,
			Message:      ChatMessage{Role: "assistant", Content: resp.Text},
			FinishReason: "stop",
		}},
		Usage:          resp.Usage,
		Citations:      resp.Citations,
		Confidence:     resp.Confidence,
		QueryMode:      resp.Mode,
		SessionID:      resp.SessionID,
		ResponseTimeMS: resp.ResponseTimeMS,
		Scope:          resp.Scope,
	})
}
