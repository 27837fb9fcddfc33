package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"bookrag-ai/internal/config"
	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/indexer"
	"bookrag-ai/internal/llm"
	"bookrag-ai/internal/rag"
	"bookrag-ai/internal/service"
	"bookrag-ai/internal/source"
	"bookrag-ai/internal/storage"
	"bookrag-ai/internal/vectorstore"
)

// NewLogger builds the process logger from the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// App holds the long-lived components shared by the API server and the ingest CLI.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Providers *llm.Providers

	storeOnce sync.Once
	store     *vectorstore.QdrantStore
	storeErr  error
}

// New opens the database, runs migrations and builds the model providers.
// The vector store is connected lazily by VectorStore.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := contextutil.LoggerFromContext(ctx)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	providers, err := llm.NewProviders(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create model providers: %w", err)
	}
	logger.InfoContext(ctx, "model providers ready",
		"embedding_provider", cfg.EmbeddingProvider,
		"embedding_model", cfg.EmbeddingModel,
		"chat_provider", cfg.ChatProvider,
		"chat_model", cfg.ChatModel,
	)

	return &App{Config: cfg, DB: db, Providers: providers}, nil
}

// VectorStore connects to Qdrant and ensures the content collection on first use.
// Later calls return the same store, or the same error.
func (a *App) VectorStore(ctx context.Context) (*vectorstore.QdrantStore, error) {
	a.storeOnce.Do(func() {
		store, err := vectorstore.NewQdrantStore(vectorstore.QdrantOptions{
			URL:     a.Config.QdrantURL,
			APIKey:  a.Config.QdrantAPIKey,
			Timeout: a.Config.QdrantTimeout,
		})
		if err != nil {
			a.storeErr = fmt.Errorf("failed to create Qdrant client: %w", err)
			return
		}
		if err := store.EnsureCollection(ctx, a.Config.QdrantCollection, a.Config.EmbeddingDimension); err != nil {
			_ = store.Close()
			a.storeErr = fmt.Errorf("failed to ensure Qdrant collection: %w", err)
			return
		}
		contextutil.LoggerFromContext(ctx).InfoContext(ctx, "qdrant collection ready",
			"collection", a.Config.QdrantCollection,
			"vector_size", a.Config.EmbeddingDimension,
		)
		a.store = store
	})
	return a.store, a.storeErr
}

// Pipeline builds the ingestion pipeline over store.
func (a *App) Pipeline(store vectorstore.VectorStore) (*indexer.Pipeline, error) {
	chunker, err := indexer.NewChunker(a.Config.MaxChunkSize, a.Config.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}
	return indexer.NewPipeline(
		source.NewScanner(),
		indexer.NewMarkdownNormalizer(),
		chunker,
		storage.NewDocumentRepo(a.DB),
		a.Providers.Embedder,
		store,
		a.Config.QdrantCollection,
	), nil
}

// Services holds the domain services served over HTTP.
type Services struct {
	Chat    service.ChatService
	Content service.ContentService
}

// Services builds the chat and content services over store.
func (a *App) Services(store vectorstore.VectorStore) (*Services, error) {
	pipeline, err := a.Pipeline(store)
	if err != nil {
		return nil, err
	}

	retriever := rag.NewRetriever(a.Providers.Embedder, store, a.Config.QdrantCollection, llm.TaskType(a.Config.EmbeddingQueryTaskType))
	engine := rag.NewEngine(retriever, a.Providers.Completer, llm.CompletionParams{
		MaxTokens:   a.Config.MaxTokens,
		Temperature: a.Config.Temperature,
	})

	return &Services{
		Chat: service.NewChatService(
			engine,
			storage.NewSessionRepo(a.DB),
			storage.NewConversationRepo(a.DB),
			a.Config.ChatModel,
		),
		Content: service.NewContentService(retriever, store, pipeline, a.Config.QdrantCollection, a.Config.MarkdownSourcePath),
	}, nil
}

// Close releases the database and the vector store connection.
func (a *App) Close() error {
	if a.store != nil {
		_ = a.store.Close()
	}
	return a.DB.Close()
}
