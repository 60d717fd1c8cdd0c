package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// DefaultBatchSize is the number of documents per bulk request.
const DefaultBatchSize = 500

// Loader ensures the target index exists and bulk loads documents into it.
type Loader struct {
	store     Store
	indexName string
	mapping   *schema.IndexMapping
	batchSize int
	connected bool
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithIndexName sets the target index. Default is schema.DefaultIndexName.
func WithIndexName(name string) Option {
	return func(l *Loader) error {
		if name == "" {
			return ErrIndexNameRequired
		}
		l.indexName = name
		return nil
	}
}

// WithMapping sets the mapping used when the index is created.
// Default is schema.DefaultMapping().
func WithMapping(mapping *schema.IndexMapping) Option {
	return func(l *Loader) error {
		if err := mapping.Validate(); err != nil {
			return err
		}
		l.mapping = mapping
		return nil
	}
}

// WithBatchSize sets the number of documents per bulk request.
// Zero submits every document in one request.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 0 {
			size = 0
		}
		l.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a Loader over store.
func NewLoader(store Store, opts ...Option) (*Loader, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	l := &Loader{
		store:     store,
		indexName: schema.DefaultIndexName,
		mapping:   schema.DefaultMapping(),
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "index-loader", "index", l.indexName)
	return l, nil
}

// IndexName returns the target index name.
func (l *Loader) IndexName() string {
	return l.indexName
}

// Connect checks the engine is reachable. It must succeed before any write;
// EnsureIndex and BulkLoad call it when it has not been called yet.
func (l *Loader) Connect(ctx context.Context) error {
	if err := l.store.Ping(ctx); err != nil {
		l.connected = false
		return fmt.Errorf("%w: %w", core.ErrConnection, err)
	}
	l.connected = true
	l.logger.Debug("search engine reachable")
	return nil
}

func (l *Loader) ensureConnected(ctx context.Context) error {
	if l.connected {
		return nil
	}
	return l.Connect(ctx)
}

// EnsureIndex creates the index with the configured mapping if it is absent.
// created reports whether this call created it. A creation rejected because
// the index already exists counts as present.
func (l *Loader) EnsureIndex(ctx context.Context) (created bool, err error) {
	if err := l.ensureConnected(ctx); err != nil {
		return false, err
	}

	exists, err := l.store.IndexExists(ctx, l.indexName)
	if err != nil {
		return false, fmt.Errorf("%w: checking index: %w", core.ErrIndexCreation, err)
	}
	if exists {
		l.logger.Info("index already exists")
		return false, nil
	}

	err = l.store.CreateIndex(ctx, l.indexName, l.mapping)
	if errors.Is(err, ErrIndexAlreadyExists) {
		l.logger.Info("index created concurrently")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", core.ErrIndexCreation, l.indexName, err)
	}

	l.logger.Info("index created", "vector_dims", l.mapping.VectorDims())
	return true, nil
}

// BulkLoad upserts every document in docs, in chunks of the configured batch
// size. Documents that fail local validation or are rejected by the engine
// are counted in the stats and do not stop the load. A failed request marks
// its whole chunk failed and aborts with the returned error.
func (l *Loader) BulkLoad(ctx context.Context, docs storage.DocumentStore) (*LoadStats, error) {
	start := time.Now()
	stats := &LoadStats{}

	if err := l.ensureConnected(ctx); err != nil {
		return stats, err
	}

	dims := l.mapping.VectorDims()
	var pending []*core.PetDocument

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		err := l.submit(ctx, pending, stats)
		pending = pending[:0]
		return err
	}

	err := docs.ForEachDocument(ctx, func(doc *core.PetDocument) error {
		stats.Submitted++
		if err := core.ValidateDocument(doc, dims); err != nil {
			l.logger.Warn("document rejected before submission", "pet_id", doc.PetID, "err", err)
			stats.fail(doc.PetID, err.Error())
			return nil
		}

		pending = append(pending, doc)
		if l.batchSize > 0 && len(pending) >= l.batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	stats.Elapsed = time.Since(start)

	if err != nil {
		l.logger.Error("bulk load aborted", "submitted", stats.Submitted, "indexed", stats.Indexed, "err", err)
		return stats, err
	}

	if stats.Failed > 0 {
		l.logger.Warn("bulk load finished with rejected documents",
			"submitted", stats.Submitted, "indexed", stats.Indexed, "failed", stats.Failed)
	} else {
		l.logger.Info("bulk load finished",
			"submitted", stats.Submitted, "indexed", stats.Indexed, "batches", stats.Batches, "elapsed", stats.Elapsed)
	}
	return stats, nil
}

// submit sends one chunk and folds the per-document results into stats.
func (l *Loader) submit(ctx context.Context, chunk []*core.PetDocument, stats *LoadStats) error {
	stats.Batches++
	l.logger.Debug("submitting bulk request", "batch", stats.Batches, "documents", len(chunk))

	results, err := l.store.Bulk(ctx, l.indexName, chunk)
	if err != nil {
		for _, doc := range chunk {
			stats.fail(doc.PetID, err.Error())
		}
		return fmt.Errorf("bulk request %d: %w", stats.Batches, err)
	}

	if len(results) != len(chunk) {
		for _, doc := range chunk {
			stats.fail(doc.PetID, "missing bulk item result")
		}
		return fmt.Errorf("bulk request %d: expected %d item results, got %d", stats.Batches, len(chunk), len(results))
	}

	for _, r := range results {
		if r.Err != nil {
			l.logger.Debug("document rejected", "pet_id", r.ID, "err", r.Err)
			stats.fail(r.ID, r.Err.Error())
			continue
		}
		stats.Indexed++
	}
	return nil
}

// Count returns the number of documents in the index.
func (l *Loader) Count(ctx context.Context) (int, error) {
	return l.store.Count(ctx, l.indexName)
}
