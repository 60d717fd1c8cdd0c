package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/petindex/ai/mock"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/index/bleve"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dims = 8

var pets = []*core.PetDocument{
	{PetID: "p1", Type: "Dog", Name: "Buddy", Color: "Brown", Description: "playful puppy"},
	{PetID: "p2", Type: "Cat", Name: "Whiskers", Color: "White", Description: "quiet cat who loves naps in the sun"},
	{PetID: "p3", Type: "Cat", Name: "Ginger", Color: "Golden", Description: "curious kitten", ImageURL: "https://img/p3.jpg"},
}

type fixedImages string

func (f fixedImages) URL(petID string) string { return string(f) + petID }

// recordingMonitor captures the callbacks it receives.
type recordingMonitor struct {
	noopMonitor
	started  string
	embedded int
	fallback error
	hits     int
	results  []*Result
}

func (r *recordingMonitor) Start(q string, _ Mode) { r.started = q }
func (r *recordingMonitor) AfterEmbedding(d int)   { r.embedded = d }
func (r *recordingMonitor) Fallback(err error)     { r.fallback = err }
func (r *recordingMonitor) AfterQuery(n int)       { r.hits = n }
func (r *recordingMonitor) Finish(res []*Result)   { r.results = res }

func setup(t *testing.T) (index.Store, *memory.Store) {
	t.Helper()
	ctx := context.Background()

	store := bleve.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.CreateIndex(ctx, schema.DefaultIndexName, schema.NewMapping(dims)))

	docs := memory.NewStore()
	for _, p := range pets {
		doc := *p
		doc.Embedding = mock.Vector(doc.Description, dims)
		_, err := docs.PutDocument(ctx, &doc)
		require.NoError(t, err)
		_, err = store.Bulk(ctx, schema.DefaultIndexName, []*core.PetDocument{&doc})
		require.NoError(t, err)
	}
	return store, docs
}

func TestNewSearcher(t *testing.T) {
	store, _ := setup(t)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(store)
		require.NoError(t, err)
		assert.Equal(t, DefaultTopK, searcher.topK)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(store, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.Equal(t, ErrIndexStoreRequired, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewSearcher(store, WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
		_, err = NewSearcher(store, WithIndexName(""))
		assert.ErrorIs(t, err, index.ErrIndexNameRequired)
	})
}

func TestSearchText(t *testing.T) {
	store, _ := setup(t)
	searcher, err := NewSearcher(store, WithImages(fixedImages("placeholder/")))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "  playfull   puppy ")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "p1", top.PetID)
	assert.Equal(t, "Buddy", top.Name)
	assert.Equal(t, "Dog", top.Type)
	assert.Equal(t, "Brown", top.Color)
	assert.Equal(t, "playful puppy", top.Description)
	assert.Equal(t, "placeholder/p1", top.Image)
	assert.Greater(t, top.Score, 0.0)
}

func TestSearchKeepsIndexedImage(t *testing.T) {
	store, _ := setup(t)
	searcher, err := NewSearcher(store, WithImages(fixedImages("placeholder/")))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "curious kitten")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "p3", results[0].PetID)
	assert.Equal(t, "https://img/p3.jpg", results[0].Image)
}

func TestSearchTopK(t *testing.T) {
	store, _ := setup(t)
	searcher, err := NewSearcher(store, WithTopK(1))
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "cat")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	store, _ := setup(t)
	searcher, err := NewSearcher(store)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), " \t　")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchSemantic(t *testing.T) {
	ctx := context.Background()
	store, docs := setup(t)

	t.Run("requires embedder", func(t *testing.T) {
		searcher, err := NewSearcher(store)
		require.NoError(t, err)
		_, err = searcher.SearchWithMonitor(ctx, "naps", ModeSemantic, 0, nil)
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("unsupported without document store", func(t *testing.T) {
		searcher, err := NewSearcher(store, WithEmbedder(mock.NewMockEmbedderWithDims(dims)))
		require.NoError(t, err)
		_, err = searcher.SearchWithMonitor(ctx, "naps", ModeSemantic, 0, nil)
		assert.ErrorIs(t, err, index.ErrUnsupportedQuery)
	})

	t.Run("falls back to document scan", func(t *testing.T) {
		searcher, err := NewSearcher(store,
			WithEmbedder(mock.NewMockEmbedderWithDims(dims)),
			WithDocumentStore(docs, -1),
		)
		require.NoError(t, err)

		mon := &recordingMonitor{}
		results, err := searcher.SearchWithMonitor(ctx, "quiet cat who loves naps in the sun", ModeSemantic, 2, mon)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "p2", results[0].PetID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-5)

		assert.Equal(t, "quiet cat who loves naps in the sun", mon.started)
		assert.Equal(t, dims, mon.embedded)
		assert.ErrorIs(t, mon.fallback, index.ErrUnsupportedQuery)
		assert.Equal(t, 2, mon.hits)
		assert.Equal(t, results, mon.results)
	})

	t.Run("embedding failure", func(t *testing.T) {
		emb := mock.NewMockEmbedderWithDims(dims)
		emb.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model offline")
		}
		searcher, err := NewSearcher(store, WithEmbedder(emb), WithLogger(slog.Default()))
		require.NoError(t, err)
		_, err = searcher.SearchWithMonitor(ctx, "naps", ModeSemantic, 0, nil)
		assert.ErrorIs(t, err, core.ErrEmbedding)
	})
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  ginger   cat ", "ginger cat"},
		{"ｐｌａｙｆｕｌ", "playful"},
		{"\tdog\n", "dog"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in))
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("semantic")
	require.NoError(t, err)
	assert.Equal(t, ModeSemantic, m)
	assert.Equal(t, "semantic", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeText, m)

	_, err = ParseMode("hybrid")
	assert.Error(t, err)
}
