package reembed

import (
	"context"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
)

const (
	// DefaultBatchSize is the default number of documents embedded per call.
	DefaultBatchSize = 100
)

// DocumentIterator groups the documents of a store into batches.
type DocumentIterator struct {
	docs      storage.DocumentStore
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents per batch (defaults when <= 0)
func NewDocumentIterator(docs storage.DocumentStore, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{docs: docs, batchSize: batchSize}
}

// ForEach calls fn with consecutive batches of documents in identifier order.
// Documents are collected first so fn may write back to the store.
// Iteration stops on the first error from fn.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.PetDocument) error) error {
	var all []*core.PetDocument
	err := it.docs.ForEachDocument(ctx, func(doc *core.PetDocument) error {
		all = append(all, doc)
		return nil
	})
	if err != nil {
		return err
	}

	for i := 0; i < len(all); i += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+it.batchSize, len(all))
		if err := fn(all[i:end]); err != nil {
			return err
		}
	}
	return nil
}
