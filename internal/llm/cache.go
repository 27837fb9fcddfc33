package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"bookrag-ai/internal/contextutil"
)

// CachedEmbedder memoises embeddings in an expiring LRU keyed by model, task type and text.
type CachedEmbedder struct {
	next  Embedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder wraps next with an LRU cache. A non-positive size or ttl disables caching
// and returns next unchanged.
func NewCachedEmbedder(next Embedder, size int, ttl time.Duration) Embedder {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &CachedEmbedder{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed returns a cached vector when available, otherwise delegates and stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string, taskType TaskType) ([]float32, error) {
	key := c.cacheKey(text, taskType)
	if cached, ok := c.cache.Get(key); ok {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "embedding cache hit", "task_type", taskType)
		return cloneVector(cached), nil
	}
	vec, err := c.next.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, cloneVector(vec))
	return vec, nil
}

// EmbedBatch embeds each text through the cache.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float32, error) {
	return embedEach(ctx, texts, taskType, c.Embed)
}

// Dimension returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimension() int {
	return c.next.Dimension()
}

// ModelName returns the wrapped embedder's model name.
func (c *CachedEmbedder) ModelName() string {
	return c.next.ModelName()
}

// Len reports the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func (c *CachedEmbedder) cacheKey(text string, taskType TaskType) string {
	sum := sha256.Sum256([]byte(c.next.ModelName() + "\x00" + string(taskType) + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	clone := make([]float32, len(values))
	copy(clone, values)
	return clone
}
