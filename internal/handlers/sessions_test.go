package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/service"
	"bookrag-ai/internal/service/mocks"
)

func TestSessionHandler_ServeHTTP(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		wantUserID string
		wantStatus int
	}{
		{name: "anonymous with empty body", body: "", wantUserID: "", wantStatus: http.StatusCreated},
		{name: "with user", body: `{"user_id":"reader-7"}`, wantUserID: "reader-7", wantStatus: http.StatusCreated},
		{name: "invalid JSON body", body: `{"user_id":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChatService := mocks.NewMockChatService(ctrl)
			if tt.wantStatus == http.StatusCreated {
				mockChatService.EXPECT().CreateSession(gomock.Any(), tt.wantUserID).
					Return(service.Session{ID: testSessionID, UserID: tt.wantUserID, CreatedAt: created}, nil)
			}

			handler := NewSessionHandler(mockChatService)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(tt.body)))

			if w.Code != tt.wantStatus {
				t.Fatalf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var resp SessionResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.SessionID != testSessionID || resp.UserID != tt.wantUserID || !resp.CreatedAt.Equal(created) {
				t.Errorf("ServeHTTP() = %+v", resp)
			}
		})
	}
}
