package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbeddingCache stores vectors keyed by an opaque content key.
// Implementations must be thread-safe for concurrent use.
type EmbeddingCache interface {
	// GetEmbedding returns the cached vector and true, or nil and false on a miss.
	GetEmbedding(ctx context.Context, key string) ([]float32, bool, error)

	// PutEmbedding stores a vector under key, replacing any previous value.
	PutEmbedding(ctx context.Context, key string, vector []float32) error
}

// AIProvider owns an Embedder and the resources behind it.
// It gives the embedding model an explicit initialization and teardown boundary.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Dimensions returns the vector length the embedder is expected to produce.
	Dimensions() int

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
