package app

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"bookrag-ai/internal/config"
	vsmocks "bookrag-ai/internal/vectorstore/mocks"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LogLevel:               slog.LevelInfo,
		LogFormat:              "text",
		DBPath:                 filepath.Join(t.TempDir(), "bookrag.db"),
		QdrantCollection:       "book_content",
		EmbeddingDimension:     768,
		EmbeddingProvider:      config.ProviderOpenAI,
		EmbeddingModel:         "text-embedding-3-small",
		EmbeddingBaseURL:       "http://localhost:8081",
		EmbeddingQueryTaskType: "RETRIEVAL_QUERY",
		ChatProvider:           config.ProviderOpenAI,
		ChatModel:              "gpt-4o-mini",
		LLMBaseURL:             "http://localhost:8082",
		MaxTokens:              1000,
		Temperature:            0.1,
		MaxChunkSize:           1000,
		ChunkOverlap:           100,
		MarkdownSourcePath:     "./docs",
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  slog.Level
		want   string
	}{
		{name: "json", format: "json", level: slog.LevelInfo, want: `"msg":"ready"`},
		{name: "text", format: "text", level: slog.LevelInfo, want: "msg=ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&config.Config{LogFormat: tt.format, LogLevel: tt.level}, &buf)

			logger.Debug("hidden")
			logger.Info("ready")

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("NewLogger() output = %q, want it to contain %q", out, tt.want)
			}
			if strings.Contains(out, "hidden") {
				t.Errorf("NewLogger() logged below the configured level: %q", out)
			}
		})
	}
}

func TestApp_Wiring(t *testing.T) {
	cfg := testConfig(t)

	components, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = components.Close()
	}()

	if components.Providers.Embedder.Dimension() != 768 {
		t.Errorf("embedder dimension = %d, want 768", components.Providers.Embedder.Dimension())
	}

	store := vsmocks.NewMockVectorStore(gomock.NewController(t))

	pipeline, err := components.Pipeline(store)
	if err != nil || pipeline == nil {
		t.Fatalf("Pipeline() = %v, %v", pipeline, err)
	}

	services, err := components.Services(store)
	if err != nil {
		t.Fatalf("Services() error = %v", err)
	}
	if services.Chat == nil || services.Content == nil {
		t.Errorf("Services() = %+v, want chat and content services", services)
	}
}

func TestApp_Pipeline_InvalidChunking(t *testing.T) {
	cfg := testConfig(t)
	components, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = components.Close()
	}()

	components.Config.ChunkOverlap = components.Config.MaxChunkSize
	if _, err := components.Pipeline(vsmocks.NewMockVectorStore(gomock.NewController(t))); err == nil {
		t.Error("Pipeline() expected error for overlap >= max size")
	}
}

func TestApp_VectorStore_InvalidURLIsCached(t *testing.T) {
	cfg := testConfig(t)
	cfg.QdrantURL = "://not a url"

	components, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = components.Close()
	}()

	_, first := components.VectorStore(context.Background())
	_, second := components.VectorStore(context.Background())
	if first == nil {
		t.Fatal("VectorStore() expected error for invalid URL")
	}
	if first != second {
		t.Errorf("VectorStore() second error = %v, want the first error %v", second, first)
	}
}
