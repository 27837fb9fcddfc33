package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"bookrag-ai/internal/contextutil"
)

// NewGeminiClient creates a Gemini API client shared by the embedder and completer.
// The client is safe for concurrent use.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// GeminiEmbedder embeds text with the Gemini embedContent API.
type GeminiEmbedder struct {
	models    *genai.Models
	model     string
	dimension int
}

// NewGeminiEmbedder creates an embedder that requests vectors of the given dimension.
func NewGeminiEmbedder(client *genai.Client, model string, dimension int) *GeminiEmbedder {
	return &GeminiEmbedder{
		models:    client.Models,
		model:     model,
		dimension: dimension,
	}
}

// Embed returns the embedding for one text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	config := &genai.EmbedContentConfig{
		TaskType:             string(taskType),
		OutputDimensionality: genai.Ptr(int32(e.dimension)),
	}
	resp, err := e.models.EmbedContent(
		ctx,
		e.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		config,
	)
	if err != nil {
		return nil, fmt.Errorf("gemini embed failed: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, ErrEmptyEmbedding
	}
	vec := resp.Embeddings[0].Values
	if err := checkDimension(vec, e.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds each text with its own request.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	return embedEach(ctx, texts, taskType, e.Embed)
}

// Dimension returns the requested vector width.
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the embedding model name.
func (e *GeminiEmbedder) ModelName() string {
	return e.model
}

// GeminiCompleter generates text with the Gemini generateContent API.
type GeminiCompleter struct {
	models *genai.Models
	model  string
}

// NewGeminiCompleter creates a completion provider for model.
func NewGeminiCompleter(client *genai.Client, model string) *GeminiCompleter {
	return &GeminiCompleter{
		models: client.Models,
		model:  model,
	}
}

// Complete generates a response for prompt.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, params CompletionParams) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(params.Temperature),
	}
	if params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxTokens)
	}

	resp, err := c.models.GenerateContent(
		ctx,
		c.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	// Blocked or partless candidates yield no text.
	text := strings.TrimSpace(resp.Text())
	if text == "" && len(resp.Candidates) > 0 {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "gemini returned no text",
			"model", c.model, "finish_reason", resp.Candidates[0].FinishReason)
	}
	return text, nil
}

// ModelName returns the chat model name.
func (c *GeminiCompleter) ModelName() string {
	return c.model
}
