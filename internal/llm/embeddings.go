package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIEmbedder is a client for OpenAI-compatible /v1/embeddings APIs.
type OpenAIEmbedder struct {
	BaseURL   string
	APIKey    string
	Model     string
	dimension int
	client    *http.Client
}

// NewOpenAIEmbedder creates a new embeddings client.
// All vectors it returns are validated against dimension.
func NewOpenAIEmbedder(baseURL, apiKey, model string, dimension int) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		Model:     model,
		dimension: dimension,
		client:    http.DefaultClient,
	}
}

// EmbeddingsRequest represents the request payload for embeddings API.
type EmbeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// Embed returns the embedding for one text. The task type is not part of the
// OpenAI embeddings API and is ignored.
func (c *OpenAIEmbedder) Embed(ctx context.Context, text string, _ TaskType) ([]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	body, err := json.Marshal(EmbeddingsRequest{
		Model:      c.Model,
		Input:      []string{text},
		Dimensions: c.dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embeddingsResp EmbeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embeddingsResp.Data) == 0 {
		return nil, ErrEmptyEmbedding
	}

	vec := make([]float32, len(embeddingsResp.Data[0].Embedding))
	for j, v := range embeddingsResp.Data[0].Embedding {
		vec[j] = float32(v)
	}
	if err := checkDimension(vec, c.dimension); err != nil {
		return nil, err
	}
	return vec, nil
}

// EmbedBatch embeds each text with its own request.
func (c *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	return embedEach(ctx, texts, taskType, c.Embed)
}

// Dimension returns the expected vector width.
func (c *OpenAIEmbedder) Dimension() int {
	return c.dimension
}

// ModelName returns the embedding model name.
func (c *OpenAIEmbedder) ModelName() string {
	return c.Model
}
