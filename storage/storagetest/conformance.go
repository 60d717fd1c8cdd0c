// Package storagetest provides a behavioral test suite shared by every
// storage.DocumentStore implementation.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Document returns a small valid document for id.
func Document(id string) *core.PetDocument {
	return &core.PetDocument{
		PetID:       id,
		Type:        "Cat",
		Name:        "Mittens " + id,
		Age:         2,
		Breed:       "265",
		Gender:      "Female",
		Color:       "Gray",
		Description: "Calm lap cat",
		PhotoAmount: 1,
		Embedding:   []float32{0.1, 0.2, 0.3},
	}
}

// PetIDs are identifiers in the PetFinder format, in ascending order.
var PetIDs = []string{"0a2f9c1d4", "3422e4906", "6296e909a", "86e1089a3", "xb0f3e7c2"}

// RunDocumentStoreTests exercises the DocumentStore contract against stores
// produced by newStore. Each subtest gets a fresh store.
func RunDocumentStoreTests(t *testing.T, newStore func(t *testing.T) storage.DocumentStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		store := newStore(t)

		changed, err := store.PutDocument(ctx, Document("86e1089a3"))
		require.NoError(t, err)
		assert.True(t, changed)

		got, err := store.GetDocument(ctx, "86e1089a3")
		require.NoError(t, err)
		assert.Equal(t, Document("86e1089a3"), got)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetDocument(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("overwrite", func(t *testing.T) {
		store := newStore(t)

		_, err := store.PutDocument(ctx, Document("86e1089a3"))
		require.NoError(t, err)

		updated := Document("86e1089a3")
		updated.Description = "Now loves dogs"
		changed, err := store.PutDocument(ctx, updated)
		require.NoError(t, err)
		assert.True(t, changed)

		got, err := store.GetDocument(ctx, "86e1089a3")
		require.NoError(t, err)
		assert.Equal(t, "Now loves dogs", got.Description)

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unchanged rewrite", func(t *testing.T) {
		store := newStore(t)

		_, err := store.PutDocument(ctx, Document("86e1089a3"))
		require.NoError(t, err)
		changed, err := store.PutDocument(ctx, Document("86e1089a3"))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("invalid key", func(t *testing.T) {
		store := newStore(t)

		_, err := store.PutDocument(ctx, Document("../escape"))
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
		_, err = store.PutDocument(ctx, Document(""))
		assert.ErrorIs(t, err, storage.ErrInvalidKey)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)

		_, err := store.PutDocument(ctx, Document("86e1089a3"))
		require.NoError(t, err)
		require.NoError(t, store.DeleteDocument(ctx, "86e1089a3"))

		_, err = store.GetDocument(ctx, "86e1089a3")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteDocument(ctx, "86e1089a3"), storage.ErrNotFound)
	})

	t.Run("petfinder identifiers", func(t *testing.T) {
		store := newStore(t)

		for _, id := range PetIDs {
			_, err := store.PutDocument(ctx, Document(id))
			require.NoError(t, err, id)
			got, err := store.GetDocument(ctx, id)
			require.NoError(t, err, id)
			assert.Equal(t, id, got.PetID)
		}
		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, len(PetIDs), n)
	})

	t.Run("iteration order", func(t *testing.T) {
		store := newStore(t)

		for _, id := range []string{"c", "a-b", "a", "b"} {
			_, err := store.PutDocument(ctx, Document(id))
			require.NoError(t, err)
		}

		var ids []string
		err := store.ForEachDocument(ctx, func(doc *core.PetDocument) error {
			ids = append(ids, doc.PetID)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a-b", "b", "c"}, ids)
	})

	t.Run("iteration stops on error", func(t *testing.T) {
		store := newStore(t)

		for _, id := range PetIDs[:2] {
			_, err := store.PutDocument(ctx, Document(id))
			require.NoError(t, err)
		}

		stop := errors.New("stop")
		visited := 0
		err := store.ForEachDocument(ctx, func(*core.PetDocument) error {
			visited++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, visited)
	})

	t.Run("concurrent writes", func(t *testing.T) {
		store := newStore(t)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := store.PutDocument(ctx, Document(fmt.Sprintf("%08x", i*0x10e0)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		n, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 20, n)
	})
}
