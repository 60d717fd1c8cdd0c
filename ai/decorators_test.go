package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failGet bool
}

func newMapCache() *mapCache {
	return &mapCache{vectors: make(map[string][]float32)}
}

func (c *mapCache) GetEmbedding(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache offline")
	}
	v, ok := c.vectors[key]
	return v, ok, nil
}

func (c *mapCache) PutEmbedding(_ context.Context, key string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = vector
	return nil
}

func TestCachedEmbedder_EmbedText(t *testing.T) {
	ctx := context.Background()
	inner := mock.NewMockEmbedderWithDims(8)
	cache := newMapCache()
	embedder := ai.NewCachedEmbedder(inner, cache, "all-minilm")

	first, err := embedder.EmbedText(ctx, "friendly cat")
	require.NoError(t, err)
	second, err := embedder.EmbedText(ctx, "friendly cat")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount(), "second call should be served from cache")
	assert.Len(t, cache.vectors, 1)
}

func TestCachedEmbedder_EmbedTextsOnlyMisses(t *testing.T) {
	ctx := context.Background()
	inner := mock.NewMockEmbedderWithDims(8)
	cache := newMapCache()
	embedder := ai.NewCachedEmbedder(inner, cache, "all-minilm")

	_, err := embedder.EmbedText(ctx, "a")
	require.NoError(t, err)
	inner.Reset()

	vecs, err := embedder.EmbedTexts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, 2, inner.TextCount())
	assert.Equal(t, mock.Vector("a", 8), vecs[0])
	assert.Equal(t, mock.Vector("c", 8), vecs[2])
}

func TestCachedEmbedder_ModelScopedKeys(t *testing.T) {
	assert.NotEqual(t, ai.CacheKey("model-a", "text"), ai.CacheKey("model-b", "text"))
	assert.Equal(t, ai.CacheKey("m", "text"), ai.CacheKey("m", "text"))
}

func TestCachedEmbedder_CacheFailureFallsThrough(t *testing.T) {
	inner := mock.NewMockEmbedderWithDims(4)
	cache := newMapCache()
	cache.failGet = true
	embedder := ai.NewCachedEmbedder(inner, cache, "m")

	vec, err := embedder.EmbedText(context.Background(), "dog")
	require.NoError(t, err)
	assert.Len(t, vec, 4)
}

func TestRateLimitedEmbedder(t *testing.T) {
	inner := mock.NewMockEmbedderWithDims(4)
	embedder := ai.NewRateLimitedEmbedder(inner, 0, 1)

	vecs, err := embedder.EmbedTexts(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vecs, 3)

	_, err = embedder.EmbedText(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CallCount())
}

func TestRateLimitedEmbedder_HonorsContext(t *testing.T) {
	inner := mock.NewMockEmbedderWithDims(4)
	embedder := ai.NewRateLimitedEmbedder(inner, 0.001, 1)

	_, err := embedder.EmbedText(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = embedder.EmbedText(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.CallCount())
}
