package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/service"
	"bookrag-ai/internal/service/mocks"
	"bookrag-ai/internal/vectorstore"
	vsmocks "bookrag-ai/internal/vectorstore/mocks"
)

const testSessionID = "3f1c9a52-6a0e-4c47-9c36-0a4f3b8e2d11"

type routerFixture struct {
	chat    *mocks.MockChatService
	content *mocks.MockContentService
	store   *vsmocks.MockVectorStore
	router  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &routerFixture{
		chat:    mocks.NewMockChatService(ctrl),
		content: mocks.NewMockContentService(ctrl),
		store:   vsmocks.NewMockVectorStore(ctrl),
	}
	f.router = NewRouter(&Deps{
		ChatService:    f.chat,
		ContentService: f.content,
		VectorStore:    f.store,
		Collection:     "book_content",
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return f
}

func TestNewRouter(t *testing.T) {
	f := newRouterFixture(t)
	if f.router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*routerFixture)
		wantStatus int
	}{
		{
			name:       "GET root",
			method:     http.MethodGet,
			path:       "/",
			mockSetup:  func(f *routerFixture) {},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST chat query",
			method: http.MethodPost,
			path:   "/api/v1/chat/query",
			body:   `{"query":"What is a humanoid?"}`,
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().Query(gomock.Any(), service.QueryRequest{Query: "What is a humanoid?"}).
					Return(service.QueryResponse{Text: "A robot shaped like a person."}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST chat query with invalid body",
			method:     http.MethodPost,
			path:       "/api/v1/chat/query",
			mockSetup:  func(f *routerFixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET chat query not allowed",
			method:     http.MethodGet,
			path:       "/api/v1/chat/query",
			mockSetup:  func(f *routerFixture) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "POST content search",
			method: http.MethodPost,
			path:   "/api/v1/content/search",
			body:   `{"query":"balance"}`,
			mockSetup: func(f *routerFixture) {
				f.content.EXPECT().Search(gomock.Any(), service.SearchRequest{Query: "balance"}).
					Return(service.SearchResponse{Query: "balance"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET content stats",
			method: http.MethodGet,
			path:   "/api/v1/content/stats",
			mockSetup: func(f *routerFixture) {
				f.content.EXPECT().Stats(gomock.Any()).Return(service.Stats{CollectionName: "book_content"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET content collections",
			method: http.MethodGet,
			path:   "/api/v1/content/collections",
			mockSetup: func(f *routerFixture) {
				f.content.EXPECT().Collections(gomock.Any()).Return([]string{"book_content"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST content ingest",
			method: http.MethodPost,
			path:   "/api/v1/content/ingest?force=true",
			mockSetup: func(f *routerFixture) {
				f.content.EXPECT().StartIngest(gomock.Any(), true).Return(nil)
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:   "GET content ingest status",
			method: http.MethodGet,
			path:   "/api/v1/content/ingest",
			mockSetup: func(f *routerFixture) {
				f.content.EXPECT().IngestStatus(gomock.Any()).Return(service.IngestStatus{})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "POST sessions",
			method: http.MethodPost,
			path:   "/api/v1/sessions",
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().CreateSession(gomock.Any(), "").Return(service.Session{ID: testSessionID}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "GET conversation",
			method: http.MethodGet,
			path:   "/api/v1/conversations/" + testSessionID,
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().History(gomock.Any(), testSessionID).Return(service.History{SessionID: testSessionID}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "DELETE conversation",
			method: http.MethodDelete,
			path:   "/api/v1/conversations/" + testSessionID,
			mockSetup: func(f *routerFixture) {
				f.chat.EXPECT().DeleteHistory(gomock.Any(), testSessionID).Return(2, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET health",
			method: http.MethodGet,
			path:   "/health",
			mockSetup: func(f *routerFixture) {
				f.store.EXPECT().Health(gomock.Any()).Return("1.16.2", nil)
				f.store.EXPECT().CollectionInfo(gomock.Any(), "book_content").
					Return(&vectorstore.CollectionInfo{Name: "book_content"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/v1/unknown",
			mockSetup:  func(f *routerFixture) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			tt.mockSetup(f)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			f.router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_Root(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["message"] != "Integrated RAG Chatbot API" || body["version"] != Version {
		t.Errorf("Router GET / body = %v", body)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Router GET / Content-Type = %v, want application/json", w.Header().Get("Content-Type"))
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	f := newRouterFixture(t)
	f.content.EXPECT().Stats(gomock.Any()).Return(service.Stats{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("Router should apply CORS middleware")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	f := newRouterFixture(t)
	f.content.EXPECT().Stats(gomock.Any()).DoAndReturn(func(context.Context) (service.Stats, error) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/stats", nil)
	w := httptest.NewRecorder()

	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Router panic status = %v, want %v", w.Code, http.StatusInternalServerError)
	}
}
