package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks bookrag-ai/internal/llm Embedder
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_completion_provider.go -package=mocks bookrag-ai/internal/llm CompletionProvider

import (
	"context"
	"errors"
	"fmt"
)

// TaskType tells the embedding model how the vector will be used.
// Providers without asymmetric retrieval support ignore it.
type TaskType string

const (
	TaskTypeDocument TaskType = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    TaskType = "RETRIEVAL_QUERY"
)

var (
	// ErrEmptyEmbedding is returned when a provider answers without vector values.
	ErrEmptyEmbedding = errors.New("no embedding values returned")
	// ErrDimensionMismatch is returned when a vector does not have the configured width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrMissingAPIKey is returned when a hosted provider is created without credentials.
	ErrMissingAPIKey = errors.New("api key is required")
)

// Embedder turns text into fixed-width vectors.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error)
	// EmbedBatch returns one vector per text, in order. Each text is a separate provider call.
	EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error)
	// Dimension is the width of every returned vector.
	Dimension() int
	// ModelName identifies the embedding model.
	ModelName() string
}

// CompletionParams holds parameters for completion requests.
type CompletionParams struct {
	// MaxTokens limits the generated output. If 0, the provider default applies.
	MaxTokens int
	// Temperature controls the randomness of the output.
	Temperature float32
}

// CompletionProvider generates text from a prompt.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string, params CompletionParams) (string, error)
	ModelName() string
}

// embedEach embeds texts one at a time through embed.
func embedEach(ctx context.Context, texts []string, taskType TaskType, embed func(context.Context, string, TaskType) ([]float32, error)) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := embed(ctx, text, taskType)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func checkDimension(vec []float32, want int) error {
	if len(vec) == 0 {
		return ErrEmptyEmbedding
	}
	if len(vec) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, want, len(vec))
	}
	return nil
}
