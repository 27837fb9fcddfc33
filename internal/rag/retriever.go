package rag

import (
	"context"
	"fmt"

	"bookrag-ai/internal/contextutil"
	"bookrag-ai/internal/llm"
	"bookrag-ai/internal/vectorstore"
)

// Retriever embeds queries and searches the vector index.
type Retriever struct {
	embedder   llm.Embedder
	store      vectorstore.VectorStore
	collection string
	taskType   llm.TaskType
}

// NewRetriever creates a retriever. An empty taskType means llm.TaskTypeQuery.
func NewRetriever(embedder llm.Embedder, store vectorstore.VectorStore, collection string, taskType llm.TaskType) *Retriever {
	if taskType == "" {
		taskType = llm.TaskTypeQuery
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		taskType:   taskType,
	}
}

// SearchContent embeds query and returns up to limit matching chunks.
func (r *Retriever) SearchContent(ctx context.Context, query string, limit int, filters map[string]any) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vector, err := r.embedder.Embed(ctx, query, r.taskType)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, r.collection, vector, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, toResult(hit))
	}

	logger.InfoContext(ctx, "content search completed", "limit", limit, "results", len(results))
	return results, nil
}

func toResult(hit vectorstore.SearchResult) Result {
	str := func(key string) string {
		s, _ := hit.Payload[key].(string)
		return s
	}
	return Result{
		SearchResult:  hit,
		SourceURL:     str("source_url"),
		Title:         str("title"),
		Content:       str("chunk_text"),
		HierarchyPath: str("hierarchy_path"),
	}
}
