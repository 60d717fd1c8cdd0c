package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedEmbedder throttles calls to the wrapped Embedder with a token bucket.
// A batch call consumes one token per text.
type RateLimitedEmbedder struct {
	inner   Embedder
	limiter *rate.Limiter
}

var _ Embedder = (*RateLimitedEmbedder)(nil)

// NewRateLimitedEmbedder allows requestsPerSecond sustained calls with the given burst.
// A non-positive rate disables throttling.
func NewRateLimitedEmbedder(inner Embedder, requestsPerSecond float64, burst int) *RateLimitedEmbedder {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &RateLimitedEmbedder{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// EmbedText waits for a token, then embeds.
func (r *RateLimitedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.EmbedText(ctx, text)
}

// EmbedTexts waits for one token per text, then embeds the batch.
func (r *RateLimitedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	n := len(texts)
	// WaitN fails outright when n exceeds the burst, so reserve in burst-sized steps.
	for n > 0 {
		step := min(n, r.limiter.Burst())
		if err := r.limiter.WaitN(ctx, step); err != nil {
			return nil, err
		}
		n -= step
	}
	return r.inner.EmbedTexts(ctx, texts)
}
