package badger

import (
	"strings"

	"github.com/poiesic/petindex/storage"
)

var errClosed = storage.ErrStorageClosed

// Key prefixes for different data types. Each ends with ':' so that a
// prefix scan for one type can never match another.
const (
	documentPrefix  = "petdoc:"
	embeddingPrefix = "embvec:"
)

// makeDocumentKey generates a key for a pet document by identifier.
// Keys sort by identifier, which gives prefix iteration ascending id order.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + id)
}

// documentIDFromKey recovers the identifier from a document key.
func documentIDFromKey(key []byte) string {
	return strings.TrimPrefix(string(key), documentPrefix)
}

// makeEmbeddingKey generates a key for a cached embedding.
func makeEmbeddingKey(cacheKey string) []byte {
	return []byte(embeddingPrefix + cacheKey)
}
