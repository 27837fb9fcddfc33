package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/service"
)

// ConversationHandler serves the conversation history of a session.
type ConversationHandler struct {
	chatService service.ChatService
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(chatService service.ChatService) *ConversationHandler {
	return &ConversationHandler{
		chatService: chatService,
	}
}

// ConversationMessage is one turn of a conversation.
type ConversationMessage struct {
	TurnNumber   int                 `json:"turn_number"`
	UserQuery    string              `json:"user_query"`
	Response     string              `json:"response"`
	QueryMode    string              `json:"query_mode"`
	SelectedText string              `json:"selected_text,omitempty"`
	Citations    []citation.Citation `json:"citations"`
	Confidence   float64             `json:"confidence_score"`
	Timestamp    time.Time           `json:"timestamp"`
}

// ConversationResponse is the history of a session.
type ConversationResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []ConversationMessage `json:"messages"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DeleteConversationResponse confirms a history deletion.
type DeleteConversationResponse struct {
	Message      string `json:"message"`
	DeletedTurns int    `json:"deleted_turns"`
}

// Get handles GET /conversations/{sessionID}.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	history, err := h.chatService.History(ctx, sessionID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get conversation history")
		return
	}

	messages := make([]ConversationMessage, len(history.Messages))
	for i, m := range history.Messages {
		citations := m.Citations
		if citations == nil {
			citations = []citation.Citation{}
		}
		messages[i] = ConversationMessage{
			TurnNumber:   m.TurnNumber,
			UserQuery:    m.Query,
			Response:     m.Response,
			QueryMode:    m.Mode,
			SelectedText: m.SelectedText,
			Citations:    citations,
			Confidence:   m.Confidence,
			Timestamp:    m.Timestamp,
		}
	}

	writeJSON(ctx, w, http.StatusOK, ConversationResponse{
		SessionID: history.SessionID,
		Messages:  messages,
		CreatedAt: history.CreatedAt,
		UpdatedAt: history.UpdatedAt,
	})
}

// Delete handles DELETE /conversations/{sessionID}.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	deleted, err := h.chatService.DeleteHistory(ctx, sessionID)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to delete conversation history")
		return
	}

	writeJSON(ctx, w, http.StatusOK, DeleteConversationResponse{
		Message:      fmt.Sprintf("Conversation history for session %s deleted successfully", sessionID),
		DeletedTurns: deleted,
	})
}
