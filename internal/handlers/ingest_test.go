package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/indexer"
	"bookrag-ai/internal/service"
	"bookrag-ai/internal/service/mocks"
)

func TestIngestHandler_ServeHTTP(t *testing.T) {
	summary := &indexer.IngestSummary{TotalFiles: 3, TotalChunks: 12, Status: indexer.StatusSuccess}

	tests := []struct {
		name       string
		method     string
		target     string
		mockSetup  func(*mocks.MockContentService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "background run",
			method: http.MethodPost,
			target: "/api/v1/content/ingest",
			mockSetup: func(m *mocks.MockContentService) {
				m.EXPECT().StartIngest(gomock.Any(), false).Return(nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   `"status":"accepted"`,
		},
		{
			name:   "forced background run",
			method: http.MethodPost,
			target: "/api/v1/content/ingest?force=true",
			mockSetup: func(m *mocks.MockContentService) {
				m.EXPECT().StartIngest(gomock.Any(), true).Return(nil)
			},
			wantStatus: http.StatusAccepted,
			wantBody:   "Forced ingestion started",
		},
		{
			name:   "synchronous run returns summary",
			method: http.MethodPost,
			target: "/api/v1/content/ingest?wait=true",
			mockSetup: func(m *mocks.MockContentService) {
				m.EXPECT().Ingest(gomock.Any(), false).Return(summary, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"total_chunks":12`,
		},
		{
			name:   "already running",
			method: http.MethodPost,
			target: "/api/v1/content/ingest",
			mockSetup: func(m *mocks.MockContentService) {
				m.EXPECT().StartIngest(gomock.Any(), false).Return(service.ErrIngestInProgress)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			target:     "/api/v1/content/ingest",
			mockSetup:  func(m *mocks.MockContentService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockContentService := mocks.NewMockContentService(ctrl)
			tt.mockSetup(mockContentService)

			handler := NewIngestHandler(mockContentService)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.target, nil))

			if w.Code != tt.wantStatus {
				t.Errorf("ServeHTTP() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("ServeHTTP() body = %s, want it to contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestIngestHandler_Status(t *testing.T) {
	finished := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		status       service.IngestStatus
		wantFinished bool
	}{
		{name: "never run", status: service.IngestStatus{}},
		{
			name: "after a run",
			status: service.IngestStatus{
				Last:       &indexer.IngestSummary{Status: indexer.StatusPartial, FailedFiles: 1},
				LastError:  "",
				FinishedAt: finished,
			},
			wantFinished: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockContentService := mocks.NewMockContentService(ctrl)
			mockContentService.EXPECT().IngestStatus(gomock.Any()).Return(tt.status)

			handler := NewIngestHandler(mockContentService)
			w := httptest.NewRecorder()
			handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/v1/content/ingest", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Status() status = %v, want %v", w.Code, http.StatusOK)
			}
			var resp IngestStatusResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if (resp.FinishedAt != nil) != tt.wantFinished {
				t.Errorf("Status() finished_at = %v, want present %v", resp.FinishedAt, tt.wantFinished)
			}
			if tt.wantFinished && (resp.Last == nil || resp.Last.FailedFiles != 1) {
				t.Errorf("Status() last = %+v", resp.Last)
			}
		})
	}
}
