package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/service"
)

// SessionHandler creates chat sessions.
type SessionHandler struct {
	chatService service.ChatService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(chatService service.ChatService) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
	}
}

// CreateSessionRequest is the optional body of POST /sessions.
type CreateSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// SessionResponse describes a created session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ServeHTTP handles POST /sessions. An empty body creates an anonymous session.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.chatService.CreateSession(ctx, req.UserID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to create session")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, SessionResponse{
		SessionID: session.ID,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
	})
}
