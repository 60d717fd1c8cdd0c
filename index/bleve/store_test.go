package bleve

import (
	"context"
	"testing"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pet(id, typ, name, color, desc string) *core.PetDocument {
	return &core.PetDocument{
		PetID:       id,
		Type:        typ,
		Name:        name,
		Age:         3,
		Color:       color,
		Description: desc,
		Embedding:   []float32{0.5, 0.5, 0.5},
	}
}

func newTestStore(t *testing.T) index.Store {
	t.Helper()
	s := NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.CreateIndex(context.Background(), "pets", schema.NewMapping(3)))
	return s
}

func TestCreateIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	exists, err := s.IndexExists(ctx, "pets")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.CreateIndex(ctx, "pets", schema.NewMapping(3)))

	exists, err = s.IndexExists(ctx, "pets")
	require.NoError(t, err)
	assert.True(t, exists)

	err = s.CreateIndex(ctx, "pets", schema.NewMapping(3))
	assert.ErrorIs(t, err, index.ErrIndexAlreadyExists)
}

func TestCreateIndexOnDiskReopens(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	s, err := NewStore(root)
	require.NoError(t, err)
	require.NoError(t, s.CreateIndex(ctx, "pets", schema.NewMapping(3)))
	_, err = s.Bulk(ctx, "pets", []*core.PetDocument{pet("a1", "Dog", "Rex", "Brown", "loyal dog")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStore(root)
	require.NoError(t, err)
	defer reopened.Close()

	exists, err := reopened.IndexExists(ctx, "pets")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.ErrorIs(t, reopened.CreateIndex(ctx, "pets", schema.NewMapping(3)), index.ErrIndexAlreadyExists)

	n, err := reopened.Count(ctx, "pets")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBulkUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	docs := []*core.PetDocument{
		pet("a1", "Dog", "Rex", "Brown", "loyal dog"),
		pet("a2", "Cat", "Tom", "Black", "sleepy cat"),
	}
	for range 2 {
		results, err := s.Bulk(ctx, "pets", docs)
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.NoError(t, r.Err)
		}
	}

	n, err := s.Count(ctx, "pets")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first := pet("86e1089a3", "Dog", "Rex", "Brown", "loyal dog")
	first.Breed = "307"
	first.ImageURL = "https://cdn.example.com/pets/86e1089a3-1.jpg"
	_, err = s.Bulk(ctx, "pets", []*core.PetDocument{first})
	require.NoError(t, err)

	updated := pet("86e1089a3", "Dog", "Rex", "Golden", "renamed loyal dog")
	_, err = s.Bulk(ctx, "pets", []*core.PetDocument{updated})
	require.NoError(t, err)

	colorQuery := func(color string) *index.Query {
		return &index.Query{
			Text:   color,
			Fields: []index.WeightedField{{Name: schema.FieldColor, Boost: 1}},
			Size:   5,
		}
	}
	hits, err := s.Search(ctx, "pets", colorQuery("Golden"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	got := hits[0].Document
	assert.Equal(t, "86e1089a3", got.PetID)
	assert.Equal(t, "Golden", got.Color)
	assert.Equal(t, []float32{0.5, 0.5, 0.5}, got.Embedding)
	assert.Empty(t, got.ImageURL, "fields only in the old version must not survive")
	assert.Empty(t, got.Breed)

	hits, err = s.Search(ctx, "pets", colorQuery("Brown"))
	require.NoError(t, err)
	assert.Empty(t, hits)

	n, err = s.Count(ctx, "pets")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSearchWeightedFuzzy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Bulk(ctx, "pets", []*core.PetDocument{
		pet("a1", "Dog", "Buddy", "Brown", "playful puppy"),
		pet("a2", "Cat", "Whiskers", "White", "quiet cat who enjoys naps"),
		pet("a3", "Cat", "Playful", "Black", "shy"),
	})
	require.NoError(t, err)

	q := &index.Query{
		Text: "playfull",
		Fields: []index.WeightedField{
			{Name: schema.FieldDescription, Boost: 3},
			{Name: schema.FieldName, Boost: 1},
		},
		Fuzzy: true,
		Size:  10,
	}
	hits, err := s.Search(ctx, "pets", q)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a1", hits[0].Document.PetID, "description match outranks name match")
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)

	q.Fuzzy = false
	hits, err = s.Search(ctx, "pets", q)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchVectorUnsupported(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Search(context.Background(), "pets", &index.Query{Vector: []float32{1, 0, 0}, Size: 3})
	assert.ErrorIs(t, err, index.ErrUnsupportedQuery)
}

func TestMissingIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	_, err := s.Bulk(ctx, "nope", []*core.PetDocument{pet("a1", "Dog", "Rex", "Brown", "x")})
	assert.ErrorIs(t, err, index.ErrIndexNotFound)

	_, err = s.Count(ctx, "nope")
	assert.ErrorIs(t, err, index.ErrIndexNotFound)
}

func TestClosedStore(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Ping(context.Background()), storage.ErrStorageClosed)
}

func TestBuildMappingSkipsVector(t *testing.T) {
	im, err := BuildMapping(schema.DefaultMapping())
	require.NoError(t, err)

	props := im.DefaultMapping.Properties
	assert.Contains(t, props, schema.FieldDescription)
	assert.Contains(t, props, sourceField)
	assert.NotContains(t, props, schema.FieldEmbedding)
}
