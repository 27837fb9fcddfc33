package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/citation"
	"bookrag-ai/internal/rag"
	"bookrag-ai/internal/service"
	"bookrag-ai/internal/service/mocks"
)

func TestNewChatHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockChatService := mocks.NewMockChatService(ctrl)
	handler := NewChatHandler(mockChatService)

	if handler == nil {
		t.Fatal("NewChatHandler() returned nil")
	}
	if handler.chatService != mockChatService {
		t.Error("NewChatHandler() chatService not set correctly")
	}
}

func TestChatHandler_ServeHTTP(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	answer := service.QueryResponse{
		ID:      "resp-1",
		Created: created,
		Model:   "gemini-2.0-flash",
		Text:    "Inverse kinematics solves joint angles for a target pose.",
		Citations: []citation.Citation{
			citation.Format("/docs/ik", "Inverse Kinematics", "joint angles", 0.8),
		},
		Confidence:     0.8,
		Mode:           rag.ModeBookWide,
		SessionID:      "session-1",
		ResponseTimeMS: 42,
		Usage:          service.Usage{PromptTokens: 3, CompletionTokens: 8, TotalTokens: 11},
	}

	tests := []struct {
		name          string
		method        string
		body          any
		mockSetup     func(*mocks.MockChatService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "successful POST request",
			method: http.MethodPost,
			body:   ChatRequest{Query: "What is IK?", SessionID: "session-1"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Query(gomock.Any(), service.QueryRequest{Query: "What is IK?", SessionID: "session-1"}).
					Return(answer, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ChatResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Object != "chat.completion" || resp.Created != created.Unix() {
					t.Errorf("ServeHTTP() envelope = %+v", resp)
				}
				if len(resp.Choices) != 1 || resp.Choices[0].Message.Content != answer.Text || resp.Choices[0].Message.Role != "assistant" {
					t.Errorf("ServeHTTP() choices = %+v", resp.Choices)
				}
				if resp.Choices[0].FinishReason != "stop" {
					t.Errorf("ServeHTTP() finish_reason = %q, want stop", resp.Choices[0].FinishReason)
				}
				if len(resp.Citations) != 1 || resp.QueryMode != rag.ModeBookWide || resp.Usage.TotalTokens != 11 {
					t.Errorf("ServeHTTP() response = %+v", resp)
				}
				if resp.Scope != nil {
					t.Errorf("ServeHTTP() scope = %+v, want nil", resp.Scope)
				}
			},
		},
		{
			name:   "query_mode alias",
			method: http.MethodPost,
			body:   ChatRequest{Query: "Explain this", QueryMode: "selected-text", SelectedText: "IK maps poses to joints."},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Query(gomock.Any(), service.QueryRequest{
						Query:        "Explain this",
						Mode:         rag.ModeSelectedText,
						SelectedText: "IK maps poses to joints.",
					}).
					Return(service.QueryResponse{
						Mode:  rag.ModeSelectedText,
						Scope: &rag.ScopeReport{Appropriate: true, OverlapRatio: 0.5},
					}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ChatResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Scope == nil || !resp.Scope.Appropriate {
					t.Errorf("ServeHTTP() scope = %+v", resp.Scope)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   ChatRequest{Query: "x"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Query(gomock.Any(), service.QueryRequest{Query: "x"}).
					Return(service.QueryResponse{}, &service.ValidationError{Field: "query", Message: "must be between 2 and 2000 characters"})
			},
			wantStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Error != "Validation error: validation error on field query: must be between 2 and 2000 characters" {
					t.Errorf("ServeHTTP() error = %q", resp.Error)
				}
			},
		},
		{
			name:   "external service error",
			method: http.MethodPost,
			body:   ChatRequest{Query: "What is IK?"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(service.QueryResponse{}, service.WrapExternal(errors.New("503"), "failed to answer"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "unexpected error",
			method: http.MethodPost,
			body:   ChatRequest{Query: "What is IK?"},
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().
					Query(gomock.Any(), gomock.Any()).
					Return(service.QueryResponse{}, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)

			handler := NewChatHandler(mockChatService)

			req := httptest.NewRequest(tt.method, "/api/v1/chat/query", bytes.NewReader(requestBody(t, tt.body)))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

// requestBody marshals body, passing strings through as raw bytes.
func requestBody(t *testing.T, body any) []byte {
	t.Helper()
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		return data
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &service.ValidationError{Field: "limit", Message: "must be between 1 and 50"}, http.StatusBadRequest},
		{"invalid input", fmt.Errorf("bad: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"ingest in progress", service.ErrIngestInProgress, http.StatusConflict},
		{"deadline", service.WrapExternal(context.DeadlineExceeded, "failed to embed"), http.StatusGatewayTimeout},
		{"external", service.WrapExternal(errors.New("refused"), "failed to search"), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			handleServiceError(req.Context(), w, tt.err, "default")

			if w.Code != tt.wantStatus {
				t.Errorf("handleServiceError() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("handleServiceError() Content-Type = %q", ct)
			}
		})
	}
}
