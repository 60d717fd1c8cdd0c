package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/ingestion"
	"github.com/poiesic/petindex/storage"
)

// BatchProcessor re-embeds one batch of documents and writes them back.
type BatchProcessor struct {
	docs           storage.DocumentStore
	embedder       ai.Embedder
	dims           int
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(docs storage.DocumentStore, embedder ai.Embedder, dims, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		docs:           docs,
		embedder:       embedder,
		dims:           dims,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds the batch's descriptions in one call and stores the updated
// documents. It returns how many documents actually changed.
func (bp *BatchProcessor) Process(ctx context.Context, batch []*core.PetDocument) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Description
	}

	var embeddings [][]float32
	err := ingestion.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("%w: after %d attempts: %w", core.ErrEmbedding, bp.maxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(batch), len(embeddings))
	}

	changed := 0
	for i, doc := range batch {
		if err := core.ValidateEmbedding(embeddings[i], bp.dims); err != nil {
			return changed, fmt.Errorf("%w: %s: %w", core.ErrEmbedding, doc.PetID, err)
		}
		doc.Embedding = embeddings[i]

		updated, err := bp.docs.PutDocument(ctx, doc)
		if err != nil {
			return changed, fmt.Errorf("writing document %s: %w", doc.PetID, err)
		}
		if updated {
			changed++
		}
	}
	return changed, nil
}
