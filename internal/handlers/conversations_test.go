package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/service"
	"bookrag-ai/internal/service/mocks"
)

const testSessionID = "3f1c9a52-6a0e-4c47-9c36-0a4f3b8e2d11"

// withSessionParam sets the chi URL parameter that the router would extract.
func withSessionParam(r *http.Request, sessionID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("sessionID", sessionID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestConversationHandler_Get(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		mockSetup     func(*mocks.MockChatService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "history",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().History(gomock.Any(), testSessionID).Return(service.History{
					SessionID: testSessionID,
					Messages: []service.HistoryMessage{
						{TurnNumber: 1, Query: "What is ZMP?", Response: "The zero moment point.", Mode: "book-wide", Timestamp: created},
						{TurnNumber: 2, Query: "And CoM?", Response: "The center of mass.", Mode: "book-wide", Timestamp: created.Add(time.Minute)},
					},
					CreatedAt: created,
					UpdatedAt: created.Add(time.Minute),
				}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ConversationResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if len(resp.Messages) != 2 || resp.Messages[1].TurnNumber != 2 || resp.Messages[0].UserQuery != "What is ZMP?" {
					t.Errorf("Get() messages = %+v", resp.Messages)
				}
				if resp.Messages[0].Citations == nil {
					t.Error("Get() citations = nil, want empty list")
				}
			},
		},
		{
			name: "unknown session",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().History(gomock.Any(), testSessionID).Return(service.History{}, service.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)

			handler := NewConversationHandler(mockChatService)
			req := withSessionParam(httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+testSessionID, nil), testSessionID)
			w := httptest.NewRecorder()

			handler.Get(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Get() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestConversationHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		mockSetup  func(*mocks.MockChatService)
		wantStatus int
		wantTurns  int
	}{
		{
			name: "deleted",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().DeleteHistory(gomock.Any(), testSessionID).Return(3, nil)
			},
			wantStatus: http.StatusOK,
			wantTurns:  3,
		},
		{
			name: "invalid session ID",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().DeleteHistory(gomock.Any(), testSessionID).
					Return(0, &service.ValidationError{Field: "session_id", Message: "must be a UUID"})
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChatService)

			handler := NewConversationHandler(mockChatService)
			req := withSessionParam(httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/"+testSessionID, nil), testSessionID)
			w := httptest.NewRecorder()

			handler.Delete(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Delete() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp DeleteConversationResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.DeletedTurns != tt.wantTurns || !strings.Contains(resp.Message, testSessionID) {
				t.Errorf("Delete() = %+v", resp)
			}
		})
	}
}
