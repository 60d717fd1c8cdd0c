package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
)

// DocumentStore implements storage.DocumentStore for BadgerDB.
type DocumentStore struct {
	backend *Backend
	owned   bool
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a DocumentStore over an already open backend.
// The caller keeps ownership of the backend.
func NewDocumentStore(backend *Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// OpenDocumentStore opens a badger database at path and returns a store that
// closes it on Close.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func OpenDocumentStore(path string) (storage.DocumentStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &DocumentStore{backend: backend, owned: true}, nil
}

// Close closes the backend if the store opened it.
func (s *DocumentStore) Close() error {
	if s.owned {
		return s.backend.Close()
	}
	return nil
}

// PutDocument stores a document, skipping the write when the encoding is unchanged.
func (s *DocumentStore) PutDocument(ctx context.Context, doc *core.PetDocument) (bool, error) {
	if err := storage.ValidateKey(doc.PetID); err != nil {
		return false, err
	}
	data, err := storage.MarshalDocument(doc)
	if err != nil {
		return false, err
	}

	changed := false
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(doc.PetID)

		old, err := readValue(tx, key)
		if err != nil {
			return err
		}
		if storage.SameContent(old, data) {
			return nil
		}

		if err := tx.Set(key, data); err != nil {
			return err
		}
		changed = true
		return tx.Commit()
	}, true)

	// Concurrent writers of the same key conflict; last writer wins on retry.
	if errors.Is(err, badger.ErrConflict) {
		return s.PutDocument(ctx, doc)
	}
	return changed, err
}

// GetDocument retrieves a single document by identifier.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*core.PetDocument, error) {
	var result *core.PetDocument
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		result, err = storage.UnmarshalDocument(data)
		return err
	}, false)
	return result, err
}

// DeleteDocument removes a document by identifier.
func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ForEachDocument visits every document in key order inside one read transaction.
func (s *DocumentStore) ForEachDocument(ctx context.Context, fn func(doc *core.PetDocument) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc *core.PetDocument
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				s.backend.logger.Error("failed to decode document", "id", documentIDFromKey(iter.Item().Key()), "err", err)
				return err
			}

			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Count returns the number of stored documents using a key-only scan.
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readValue returns a copy of the value at key, or nil if absent.
func readValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}
