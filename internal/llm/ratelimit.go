package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder throttles calls to a hosted embedding API.
type RateLimitedEmbedder struct {
	next    Embedder
	limiter *rate.Limiter
}

// NewRateLimitedEmbedder wraps next with a token bucket of requestsPerSecond.
// A non-positive rate disables limiting and returns next unchanged.
func NewRateLimitedEmbedder(next Embedder, requestsPerSecond float64) Embedder {
	if next == nil || requestsPerSecond <= 0 {
		return next
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedder{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token, then delegates.
func (r *RateLimitedEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	return r.next.Embed(ctx, text, taskType)
}

// EmbedBatch embeds each text, taking one token per text.
func (r *RateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	return embedEach(ctx, texts, taskType, r.Embed)
}

// Dimension returns the wrapped embedder's dimension.
func (r *RateLimitedEmbedder) Dimension() int {
	return r.next.Dimension()
}

// ModelName returns the wrapped embedder's model name.
func (r *RateLimitedEmbedder) ModelName() string {
	return r.next.ModelName()
}
