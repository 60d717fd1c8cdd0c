package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/petindex/ai/mock"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
	"github.com/poiesic/petindex/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDocuments(t *testing.T, docs storage.DocumentStore, n int) {
	t.Helper()
	for i := range n {
		_, err := docs.PutDocument(context.Background(), &core.PetDocument{
			PetID:       fmt.Sprintf("P%02d", i),
			Name:        "pet",
			Description: fmt.Sprintf("description %d", i),
			Embedding:   []float32{1, 0, 0, 0},
		})
		require.NoError(t, err)
	}
}

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
		Dimensions:     4,
	}
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 10)

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedderWithDims(4)
	result, err := NewReembedder(docs, embedder, testConfig(), &buf).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Processed)
	assert.Equal(t, 10, result.Changed)
	assert.Equal(t, 4, embedder.CallCount(), "10 documents in batches of 3")

	doc, err := docs.GetDocument(ctx, "P07")
	require.NoError(t, err)
	assert.Equal(t, mock.Vector("description 7", 4), doc.Embedding)
	assert.Equal(t, "pet", doc.Name, "other fields untouched")

	assert.Contains(t, buf.String(), "10/10")
}

func TestReembedder_SecondRunChangesNothing(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 4)
	embedder := mock.NewMockEmbedderWithDims(4)

	_, err := NewReembedder(docs, embedder, testConfig(), nil).Run(ctx)
	require.NoError(t, err)

	result, err := NewReembedder(docs, embedder, testConfig(), nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Zero(t, result.Changed)
}

func TestReembedder_EmptyStore(t *testing.T) {
	var buf bytes.Buffer
	result, err := NewReembedder(memory.NewDocumentStore(), mock.NewMockEmbedderWithDims(4), testConfig(), &buf).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Contains(t, buf.String(), "0 documents")
}

func TestReembedder_EmbedderFailure(t *testing.T) {
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 5)

	embedder := mock.NewMockEmbedderWithDims(4)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}

	_, err := NewReembedder(docs, embedder, testConfig(), nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmbedding)
	assert.Equal(t, 3, embedder.CallCount(), "first batch retried MaxRetries times")
}

func TestReembedder_DimensionMismatch(t *testing.T) {
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 2)

	cfg := testConfig()
	cfg.Dimensions = 384
	_, err := NewReembedder(docs, mock.NewMockEmbedderWithDims(4), cfg, nil).Run(context.Background())
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	docs := memory.NewDocumentStore()
	embedder := mock.NewMockEmbedderWithDims(4)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 2, 3, 4}}, nil
	}

	bp := NewBatchProcessor(docs, embedder, 4, 1, time.Millisecond)
	_, err := bp.Process(context.Background(), []*core.PetDocument{{PetID: "a"}, {PetID: "b"}})
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestDocumentIterator_Batches(t *testing.T) {
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 7)

	var sizes []int
	var first []string
	err := NewDocumentIterator(docs, 3).ForEach(context.Background(), func(batch []*core.PetDocument) error {
		sizes = append(sizes, len(batch))
		first = append(first, batch[0].PetID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, []string{"P00", "P03", "P06"}, first)
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	docs := memory.NewDocumentStore()
	seedDocuments(t, docs, 7)

	stop := errors.New("stop")
	calls := 0
	err := NewDocumentIterator(docs, 2).ForEach(context.Background(), func([]*core.PetDocument) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
