package index

import (
	"context"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
)

// Store is a search engine holding named indexes of pet documents.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping checks the engine is reachable.
	Ping(ctx context.Context) error

	// IndexExists reports whether the named index exists.
	IndexExists(ctx context.Context, name string) (bool, error)

	// CreateIndex creates the named index with mapping.
	// Returns an error wrapping ErrIndexAlreadyExists if it is already present.
	CreateIndex(ctx context.Context, name string, mapping *schema.IndexMapping) error

	// Bulk upserts docs keyed by PetID and returns one result per document,
	// in input order. A non-nil error means the request as a whole failed.
	Bulk(ctx context.Context, name string, docs []*core.PetDocument) ([]BulkItemResult, error)

	// Search runs q against the named index.
	Search(ctx context.Context, name string, q *Query) ([]*core.SearchHit, error)

	// Count returns the number of documents in the named index.
	Count(ctx context.Context, name string) (int, error)

	// Close releases connections and open indexes.
	Close() error
}

// BulkItemResult is the engine's verdict on one document of a bulk write.
type BulkItemResult struct {
	ID string
	// Err is nil when the document was indexed.
	Err error
}

// WeightedField is a field searched with a relevance boost.
type WeightedField struct {
	Name  string
	Boost float64
}

// Query is a search request. Either Text (a multi-field match) or Vector
// (nearest neighbors on the mapping's vector field) must be set.
type Query struct {
	Text   string
	Fields []WeightedField
	// Fuzzy enables edit-distance tolerant matching of Text.
	Fuzzy bool

	Vector []float32

	// Size is the maximum number of hits.
	Size int
}

// IsVector reports whether q is a nearest-neighbor query.
func (q *Query) IsVector() bool {
	return len(q.Vector) > 0
}
