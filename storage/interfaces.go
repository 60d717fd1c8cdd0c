package storage

import (
	"context"

	"github.com/poiesic/petindex/core"
)

// DocumentStore persists one PetDocument per pet identifier.
// Implementations must be thread-safe and support concurrent access.
type DocumentStore interface {
	// PutDocument stores doc under doc.PetID, replacing any prior document.
	// changed is false when the stored encoding was already byte-identical.
	// Returns ErrInvalidKey if the identifier cannot be used as a key.
	PutDocument(ctx context.Context, doc *core.PetDocument) (changed bool, err error)

	// GetDocument retrieves a document by identifier.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.PetDocument, error)

	// DeleteDocument removes a document by identifier.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id string) error

	// ForEachDocument calls fn for every stored document in ascending identifier order.
	// Iteration stops at the first error returned by fn, which is returned as is.
	ForEachDocument(ctx context.Context, fn func(doc *core.PetDocument) error) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// EmbeddingCache stores embedding vectors keyed by an opaque content key.
// It has the same shape as ai.EmbeddingCache so stores can back an
// ai.CachedEmbedder directly.
type EmbeddingCache interface {
	// GetEmbedding returns the cached vector and true, or nil and false on a miss.
	GetEmbedding(ctx context.Context, key string) ([]float32, bool, error)

	// PutEmbedding stores a vector under key, replacing any previous value.
	PutEmbedding(ctx context.Context, key string, vector []float32) error
}
