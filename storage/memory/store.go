// Package memory provides an in-memory storage.DocumentStore for tests and
// single-shot runs that do not need the documents on disk.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
)

// Store keeps encoded documents in a map.
type Store struct {
	mu      sync.RWMutex
	docs    map[string][]byte
	vectors map[string][]float32
	closed  bool
}

var (
	_ storage.DocumentStore  = (*Store)(nil)
	_ storage.EmbeddingCache = (*Store)(nil)
)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs:    make(map[string][]byte),
		vectors: make(map[string][]float32),
	}
}

// NewDocumentStore returns an empty in-memory store as a storage.DocumentStore.
func NewDocumentStore() storage.DocumentStore {
	return NewStore()
}

// PutDocument implements storage.DocumentStore.
func (s *Store) PutDocument(ctx context.Context, doc *core.PetDocument) (bool, error) {
	if err := storage.ValidateKey(doc.PetID); err != nil {
		return false, err
	}
	data, err := storage.MarshalDocument(doc)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, storage.ErrStorageClosed
	}
	if storage.SameContent(s.docs[doc.PetID], data) {
		return false, nil
	}
	s.docs[doc.PetID] = data
	return true, nil
}

// GetDocument implements storage.DocumentStore.
func (s *Store) GetDocument(ctx context.Context, id string) (*core.PetDocument, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	closed := s.closed
	s.mu.RUnlock()

	if closed {
		return nil, storage.ErrStorageClosed
	}
	if !ok {
		return nil, storage.ErrNotFound
	}
	return storage.UnmarshalDocument(data)
}

// DeleteDocument implements storage.DocumentStore.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	if _, ok := s.docs[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// ForEachDocument implements storage.DocumentStore. It iterates a snapshot of
// the keys taken at call time, so fn may write to the store.
func (s *Store) ForEachDocument(ctx context.Context, fn func(doc *core.PetDocument) error) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return storage.ErrStorageClosed
	}
	ids := slices.Sorted(maps.Keys(s.docs))
	s.mu.RUnlock()

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.GetDocument(ctx, id)
		if err == storage.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// Count implements storage.DocumentStore.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, storage.ErrStorageClosed
	}
	return len(s.docs), nil
}

// GetEmbedding implements storage.EmbeddingCache.
func (s *Store) GetEmbedding(ctx context.Context, key string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// PutEmbedding implements storage.EmbeddingCache.
func (s *Store) PutEmbedding(ctx context.Context, key string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	s.vectors[key] = slices.Clone(vector)
	return nil
}

// Close implements storage.DocumentStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
