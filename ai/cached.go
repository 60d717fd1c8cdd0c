package ai

import (
	"context"
	"log/slog"

	"github.com/poiesic/petindex/core"
)

// CachedEmbedder consults an EmbeddingCache before calling the wrapped Embedder.
// Keys are derived from the model identifier and the exact text, so switching
// models never returns stale vectors.
type CachedEmbedder struct {
	inner   Embedder
	cache   EmbeddingCache
	modelID string
	logger  *slog.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with cache.
func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, modelID string) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		cache:   cache,
		modelID: modelID,
		logger:  slog.Default().With("component", "embedding-cache"),
	}
}

// CacheKey returns the cache key for text under modelID.
func CacheKey(modelID, text string) string {
	return core.Digest([]byte(modelID + "|" + text))
}

// EmbedText returns the cached vector or embeds and caches it.
// Cache failures are logged and never fail the call.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.modelID, text)
	if vec, ok, err := c.cache.GetEmbedding(ctx, key); err != nil {
		c.logger.Warn("embedding cache read failed", "err", err)
	} else if ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.PutEmbedding(ctx, key, vec); err != nil {
		c.logger.Warn("embedding cache write failed", "err", err)
	}
	return vec, nil
}

// EmbedTexts embeds only the cache misses in a single batch call.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		vec, ok, err := c.cache.GetEmbedding(ctx, CacheKey(c.modelID, text))
		if err != nil {
			c.logger.Warn("embedding cache read failed", "err", err)
		}
		if ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		if j >= len(vecs) {
			break
		}
		out[i] = vecs[j]
		if err := c.cache.PutEmbedding(ctx, CacheKey(c.modelID, missTexts[j]), vecs[j]); err != nil {
			c.logger.Warn("embedding cache write failed", "err", err)
		}
	}
	return out, nil
}
