package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/core"
)

// descriptionEmbedder embeds one description with retries and checks the
// vector against the mapping's dimensionality.
type descriptionEmbedder struct {
	embedder    ai.Embedder
	dims        int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// embed returns the description's vector. Every error wraps core.ErrEmbedding.
// A wrong-length vector is not retried since the model will not change its mind.
func (e *descriptionEmbedder) embed(ctx context.Context, petID, description string) ([]float32, error) {
	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		v, err := e.embedder.EmbedText(ctx, description)
		if err != nil {
			e.logger.Debug("embedding attempt failed", "pet_id", petID, "err", err)
			return err
		}
		vector = v
		return nil
	}, e.maxAttempts, e.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrEmbedding, petID, err)
	}

	if err := core.ValidateEmbedding(vector, e.dims); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrEmbedding, petID, err)
	}
	return vector, nil
}
