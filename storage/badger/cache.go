package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/petindex/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB, so repeated
// runs can skip inference for descriptions that were already embedded.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates an EmbeddingCache over an open backend.
func NewEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{backend: backend}
}

// GetEmbedding returns the cached vector for key.
func (c *EmbeddingCache) GetEmbedding(ctx context.Context, key string) ([]float32, bool, error) {
	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeEmbeddingKey(key))
		if err != nil || data == nil {
			return err
		}
		vector, err = storage.UnmarshalVector(data)
		return err
	}, false)
	if err != nil {
		return nil, false, err
	}
	return vector, vector != nil, nil
}

// PutEmbedding stores vector under key.
func (c *EmbeddingCache) PutEmbedding(ctx context.Context, key string, vector []float32) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(key), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
