package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookrag-ai/internal/handlers"
	"bookrag-ai/internal/service"
	"bookrag-ai/internal/vectorstore"
)

// Version is reported by GET / and GET /health.
const Version = "1.0.0"

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService    service.ChatService
	ContentService service.ContentService
	VectorStore    vectorstore.VectorStore
	Collection     string
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	contentHandler := handlers.NewContentHandler(deps.ContentService)
	ingestHandler := handlers.NewIngestHandler(deps.ContentService)
	sessionHandler := handlers.NewSessionHandler(deps.ChatService)
	conversationHandler := handlers.NewConversationHandler(deps.ChatService)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection, Version)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat/query", chatHandler)

		r.Route("/content", func(r chi.Router) {
			r.Post("/search", contentHandler.Search)
			r.Get("/stats", contentHandler.Stats)
			r.Get("/collections", contentHandler.Collections)
			r.Method(http.MethodPost, "/ingest", ingestHandler)
			r.Get("/ingest", ingestHandler.Status)
		})

		r.Method(http.MethodPost, "/sessions", sessionHandler)

		r.Get("/conversations/{sessionID}", conversationHandler.Get)
		r.Delete("/conversations/{sessionID}", conversationHandler.Delete)
	})

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Get("/", handlers.Root(Version))

	return r
}
