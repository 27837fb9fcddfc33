package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"bookrag-ai/internal/config"
)

// Providers bundles the embedding gateway and completion provider selected by configuration.
type Providers struct {
	Embedder  Embedder
	Completer CompletionProvider
}

// NewProviders builds the configured embedder (wrapped with rate limiting and caching)
// and completion provider. A single Gemini client is shared when both use Gemini.
func NewProviders(ctx context.Context, cfg *config.Config) (*Providers, error) {
	var geminiClient *genai.Client
	gemini := func() (*genai.Client, error) {
		if geminiClient != nil {
			return geminiClient, nil
		}
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		geminiClient = client
		return client, nil
	}

	var embedder Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderGemini:
		client, err := gemini()
		if err != nil {
			return nil, err
		}
		embedder = NewGeminiEmbedder(client, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	case config.ProviderOpenAI:
		embedder = NewOpenAIEmbedder(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
	embedder = NewRateLimitedEmbedder(embedder, cfg.EmbeddingRateLimit)
	embedder = NewCachedEmbedder(embedder, cfg.EmbeddingCacheSize, cfg.EmbeddingCacheTTL)

	var completer CompletionProvider
	switch cfg.ChatProvider {
	case config.ProviderGemini:
		client, err := gemini()
		if err != nil {
			return nil, err
		}
		completer = NewGeminiCompleter(client, cfg.ChatModel)
	case config.ProviderOpenAI:
		completer = NewOpenAICompleter(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ChatModel)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.ChatProvider)
	}

	return &Providers{Embedder: embedder, Completer: completer}, nil
}
