package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks bookrag-ai/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/rag"
	"bookrag-ai/internal/storage"
)

const (
	minQueryLength        = 2
	maxQueryLength        = 2000
	maxSelectedTextLength = 5000
	minAnswerLength       = 20
)

// QueryRequest is a reader question in the domain layer.
type QueryRequest struct {
	Query        string
	Mode         rag.Mode // Empty means rag.ModeBookWide
	SelectedText string
	SessionID    string // Optional; a new session is created when empty
}

// Usage approximates token usage with whitespace-separated word counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// QueryResponse is the answer to a QueryRequest.
type QueryResponse struct {
	ID             string
	Created        time.Time
	Model          string
	Text           string
	Citations      []citation.Citation
	Confidence     float64
	Mode           rag.Mode
	SessionID      string
	ResponseTimeMS int64
	Usage          Usage
	// Scope is set in selected-text mode.
	Scope *rag.ScopeReport
}

// Session is a reader's chat session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// HistoryMessage is one question and answer in a conversation.
type HistoryMessage struct {
	TurnNumber   int
	Query        string
	Mode         string
	SelectedText string
	Response     string
	Citations    []citation.Citation
	Confidence   float64
	Timestamp    time.Time
}

// History is the ordered conversation of a session.
type History struct {
	SessionID string
	Messages  []HistoryMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatService answers reader questions and keeps conversation history.
type ChatService interface {
	// Query validates req, answers it in the requested mode and records the turn.
	Query(ctx context.Context, req QueryRequest) (QueryResponse, error)
	// History returns the turns of a session in order.
	History(ctx context.Context, sessionID string) (History, error)
	// DeleteHistory removes every turn of a session and returns how many were removed.
	DeleteHistory(ctx context.Context, sessionID string) (int, error)
	// CreateSession starts a new session. userID is optional.
	CreateSession(ctx context.Context, userID string) (Session, error)
}

// chatService implements ChatService.
type chatService struct {
	engine        rag.Engine
	sessions      storage.SessionStore
	conversations storage.ConversationStore
	model         string
	now           func() time.Time
}

// NewChatService creates a new ChatService. model is reported for answers
// that were produced without a completion call.
func NewChatService(engine rag.Engine, sessions storage.SessionStore, conversations storage.ConversationStore, model string) ChatService {
	return &chatService{
		engine:        engine,
		sessions:      sessions,
		conversations: conversations,
		model:         model,
		now:           time.Now,
	}
}

// Query answers a question.
func (s *chatService) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	req, err := validateQuery(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid query request", "error", err)
		return QueryResponse{}, err
	}

	start := s.now()

	var answer rag.Answer
	var scope *rag.ScopeReport
	switch req.Mode {
	case rag.ModeSelectedText:
		report := rag.CheckScope(req.SelectedText, req.Query)
		scope = &report
		if !report.Appropriate {
			logger.InfoContext(ctx, "question loosely related to selection", "overlap_ratio", report.OverlapRatio)
		}
		answer, err = s.engine.QuerySelectedText(ctx, req.Query, req.SelectedText)
	default:
		answer, err = s.engine.QueryBookWide(ctx, req.Query)
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to answer query", "mode", req.Mode, "error", err)
		return QueryResponse{}, WrapExternal(err, "failed to answer query")
	}

	if ok, invalid := citation.ValidateAll(answer.Citations); !ok {
		logger.WarnContext(ctx, "answer has malformed citations", "invalid_positions", invalid)
	}
	if issues := qualityIssues(answer); len(issues) > 0 {
		logger.WarnContext(ctx, "response quality issues", "issues", issues)
	}

	elapsed := s.now().Sub(start)
	resp := QueryResponse{
		ID:             uuid.New().String(),
		Created:        start.UTC(),
		Model:          answer.Model,
		Text:           answer.Text,
		Citations:      answer.Citations,
		Confidence:     answer.Confidence,
		Mode:           req.Mode,
		SessionID:      req.SessionID,
		ResponseTimeMS: elapsed.Milliseconds(),
		Usage:          wordUsage(req.Query, answer.Text),
		Scope:          scope,
	}
	if resp.Model == "" {
		resp.Model = s.model
	}
	if resp.Citations == nil {
		resp.Citations = []citation.Citation{}
	}

	sessionID, err := s.ensureSession(ctx, req.SessionID)
	resp.SessionID = sessionID
	if err != nil {
		logger.WarnContext(ctx, "failed to prepare session, turn not recorded", "session_id", sessionID, "error", err)
	} else if err := s.recordTurn(ctx, req, resp); err != nil {
		logger.WarnContext(ctx, "failed to record conversation turn", "session_id", sessionID, "error", err)
	}

	logger.InfoContext(ctx, "query processed",
		"mode", resp.Mode,
		"session_id", resp.SessionID,
		"citations", len(resp.Citations),
		"confidence", resp.Confidence,
		"response_time_ms", resp.ResponseTimeMS,
	)
	return resp, nil
}

// validateQuery trims and checks req and fills in the default mode.
func validateQuery(req QueryRequest) (QueryRequest, error) {
	req.Query = strings.TrimSpace(req.Query)
	req.SelectedText = strings.TrimSpace(req.SelectedText)
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.Mode == "" {
		req.Mode = rag.ModeBookWide
	}

	n := utf8.RuneCountInString(req.Query)
	if n < minQueryLength || n > maxQueryLength {
		return req, &ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("must be between %d and %d characters", minQueryLength, maxQueryLength),
		}
	}
	if !req.Mode.Valid() {
		return req, &ValidationError{
			Field:   "mode",
			Message: fmt.Sprintf("must be %q or %q", rag.ModeBookWide, rag.ModeSelectedText),
		}
	}
	if utf8.RuneCountInString(req.SelectedText) > maxSelectedTextLength {
		return req, &ValidationError{
			Field:   "selected_text",
			Message: fmt.Sprintf("must be at most %d characters", maxSelectedTextLength),
		}
	}
	if req.Mode == rag.ModeSelectedText && req.SelectedText == "" {
		return req, &ValidationError{
			Field:   "selected_text",
			Message: "is required in selected-text mode",
		}
	}
	if req.SessionID != "" {
		if _, err := uuid.Parse(req.SessionID); err != nil {
			return req, &ValidationError{Field: "session_id", Message: "must be a UUID"}
		}
	}
	return req, nil
}

// qualityIssues flags answers without valid citations or with very short text.
func qualityIssues(answer rag.Answer) []string {
	valid := 0
	for _, c := range answer.Citations {
		if citation.Validate(c) {
			valid++
		}
	}

	var issues []string
	if valid == 0 {
		issues = append(issues, "no valid citations")
	}
	if len(answer.Text) <= minAnswerLength {
		issues = append(issues, "response too short")
	}
	return issues
}

func wordUsage(query, answer string) Usage {
	prompt := len(strings.Fields(query))
	completion := len(strings.Fields(answer))
	return Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// ensureSession returns the ID of an active session, creating one when id is
// empty or unknown.
func (s *chatService) ensureSession(ctx context.Context, id string) (string, error) {
	if id != "" {
		err := s.sessions.Touch(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return id, fmt.Errorf("failed to touch session: %w", err)
		}
	}

	session := &storage.Session{ID: id}
	if err := s.sessions.Create(ctx, session); err != nil {
		return session.ID, fmt.Errorf("failed to create session: %w", err)
	}
	return session.ID, nil
}

func (s *chatService) recordTurn(ctx context.Context, req QueryRequest, resp QueryResponse) error {
	records := make([]storage.CitationRecord, len(resp.Citations))
	for i, c := range resp.Citations {
		records[i] = storage.CitationRecord{
			SourceURL: c.SourceURL,
			Title:     c.Title,
			Text:      c.Text,
			Relevance: c.Relevance,
		}
	}

	return s.conversations.SaveTurn(ctx, &storage.Turn{
		SessionID: resp.SessionID,
		Query: storage.QueryRecord{
			Text:         req.Query,
			Mode:         string(req.Mode),
			SelectedText: req.SelectedText,
			CreatedAt:    resp.Created,
		},
		Response: storage.ResponseRecord{
			ID:             resp.ID,
			Text:           resp.Text,
			Confidence:     resp.Confidence,
			ResponseTimeMS: resp.ResponseTimeMS,
			Citations:      records,
		},
	})
}

// History returns the conversation of a session.
func (s *chatService) History(ctx context.Context, sessionID string) (History, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateSessionID(sessionID); err != nil {
		return History{}, err
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return History{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return History{}, WrapError(err, "failed to get session")
	}

	turns, err := s.conversations.ListTurns(ctx, sessionID)
	if err != nil {
		return History{}, WrapError(err, "failed to list conversation turns")
	}

	history := History{
		SessionID: sessionID,
		Messages:  make([]HistoryMessage, 0, len(turns)),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.LastActivity,
	}
	for _, turn := range turns {
		citations := make([]citation.Citation, len(turn.Response.Citations))
		for i, c := range turn.Response.Citations {
			citations[i] = citation.Format(c.SourceURL, c.Title, c.Text, c.Relevance)
		}
		history.Messages = append(history.Messages, HistoryMessage{
			TurnNumber:   turn.TurnNumber,
			Query:        turn.Query.Text,
			Mode:         turn.Query.Mode,
			SelectedText: turn.Query.SelectedText,
			Response:     turn.Response.Text,
			Citations:    citations,
			Confidence:   turn.Response.Confidence,
			Timestamp:    turn.Response.CreatedAt,
		})
	}

	logger.InfoContext(ctx, "conversation history retrieved", "session_id", sessionID, "turns", len(history.Messages))
	return history, nil
}

// DeleteHistory removes the turns of a session and deactivates it.
func (s *chatService) DeleteHistory(ctx context.Context, sessionID string) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateSessionID(sessionID); err != nil {
		return 0, err
	}

	deleted, err := s.conversations.DeleteBySession(ctx, sessionID)
	if err != nil {
		return 0, WrapError(err, "failed to delete conversation history")
	}

	if err := s.sessions.Deactivate(ctx, sessionID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return deleted, WrapError(err, "failed to deactivate session")
	}

	logger.InfoContext(ctx, "conversation history deleted", "session_id", sessionID, "turns", deleted)
	return deleted, nil
}

// CreateSession starts a new session.
func (s *chatService) CreateSession(ctx context.Context, userID string) (Session, error) {
	logger := contextutil.LoggerFromContext(ctx)

	session := &storage.Session{UserID: strings.TrimSpace(userID)}
	if err := s.sessions.Create(ctx, session); err != nil {
		return Session{}, WrapError(err, "failed to create session")
	}

	logger.InfoContext(ctx, "session created", "session_id", session.ID)
	return Session{
		ID:        session.ID,
		UserID:    session.UserID,
		CreatedAt: session.CreatedAt,
	}, nil
}

func validateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "session_id", Message: "must be a UUID"}
	}
	return nil
}
