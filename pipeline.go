package petindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/ai/openai"
	"github.com/poiesic/petindex/config"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/images"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/index/bleve"
	"github.com/poiesic/petindex/index/elastic"
	"github.com/poiesic/petindex/ingestion"
	"github.com/poiesic/petindex/normalize"
	"github.com/poiesic/petindex/reembed"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/search"
	"github.com/poiesic/petindex/storage"
	"github.com/poiesic/petindex/storage/badger"
	"github.com/poiesic/petindex/storage/fs"
	"github.com/poiesic/petindex/storage/memory"
)

// Report summarizes one full run.
type Report struct {
	RunID        uuid.UUID
	Normalize    *normalize.Result
	Build        *ingestion.BuildResult
	Load         *index.LoadStats
	IndexCreated bool
	Elapsed      time.Duration
}

// Pipeline wires the normalizer, document builder and index loader.
type Pipeline struct {
	cfg *config.Config

	embedder   ai.Embedder
	docs       storage.DocumentStore
	indexStore index.Store
	images     *images.Locator

	progress         io.Writer
	progressInterval int
	// base is handed to stages, which add their own component.
	base   *slog.Logger
	logger *slog.Logger

	// closers release owned resources, in opening order.
	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// NewPipeline validates cfg and opens every dependency not injected through opts.
// A nil cfg uses config.DefaultConfig().
func NewPipeline(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.base = p.logger
	p.logger = p.base.With("component", "pipeline")

	if err := p.open(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) own(name string, close func() error) {
	p.closers = append(p.closers, namedCloser{name: name, close: close})
}

// open creates the dependencies that were not injected.
func (p *Pipeline) open() error {
	if p.docs == nil {
		docs, err := p.openDocuments()
		if err != nil {
			return fmt.Errorf("opening document store: %w", err)
		}
		p.docs = docs
		p.own("document store", docs.Close)
	}

	if p.embedder == nil {
		provider, err := openai.NewProvider(p.cfg.AIConfig())
		if err != nil {
			return fmt.Errorf("creating embedding provider: %w", err)
		}
		p.own("embedding provider", provider.Close)
		p.embedder = provider.Embedder()

		if path := p.cfg.Embedding.CachePath; path != "" {
			backend, err := badger.OpenBackend(path, false)
			if err != nil {
				return fmt.Errorf("opening embedding cache: %w", err)
			}
			p.own("embedding cache", backend.Close)
			p.embedder = ai.NewCachedEmbedder(p.embedder, badger.NewEmbeddingCache(backend), p.cfg.Embedding.Model)
		}
		if rps := p.cfg.Embedding.RequestsPerSecond; rps > 0 {
			p.embedder = ai.NewRateLimitedEmbedder(p.embedder, rps, p.cfg.Embedding.Burst)
		}
	}

	if p.indexStore == nil {
		store, err := p.openIndex()
		if err != nil {
			return fmt.Errorf("creating index store: %w", err)
		}
		p.indexStore = store
		p.own("index store", store.Close)
	}

	if dir := p.cfg.Source.ImageDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			var opts []images.Option
			if p.cfg.Source.ImageBaseURL != "" {
				opts = append(opts, images.WithBaseURL(p.cfg.Source.ImageBaseURL))
			}
			locator, err := images.NewLocator(dir, opts...)
			if err != nil {
				return err
			}
			p.images = locator
		} else {
			p.logger.Debug("image directory not found, documents get no image_url", "dir", dir)
		}
	}
	return nil
}

func (p *Pipeline) openDocuments() (storage.DocumentStore, error) {
	switch p.cfg.Documents.Backend {
	case config.DocumentsBadger:
		return badger.OpenDocumentStore(p.cfg.Documents.Dir)
	case config.DocumentsMemory:
		return memory.NewDocumentStore(), nil
	default:
		return fs.NewDocumentStore(p.cfg.Documents.Dir)
	}
}

func (p *Pipeline) openIndex() (index.Store, error) {
	if p.cfg.Index.Backend == config.IndexBleve {
		return bleve.NewStore(p.cfg.Index.BleveDir)
	}
	return elastic.NewStore(p.cfg.ElasticConfig())
}

// Config returns the validated configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Documents returns the document store.
func (p *Pipeline) Documents() storage.DocumentStore {
	return p.docs
}

// IndexStore returns the search engine.
func (p *Pipeline) IndexStore() index.Store {
	return p.indexStore
}

// Embedder returns the embedder, including the cache and throttling layers.
func (p *Pipeline) Embedder() ai.Embedder {
	return p.embedder
}

// Run executes normalize, build and load. A fatal error is returned as a
// *core.StageError along with the partial report. Documents rejected by the
// engine are not fatal; see Report.Load.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.New()}
	runID := report.RunID.String()
	logger := p.logger.With("run_id", runID)
	stages := p.base.With("run_id", runID)
	logger.Info("pipeline started", "source", p.cfg.Source.CSV, "index", p.cfg.Index.Name)

	defer func() {
		report.Elapsed = time.Since(start)
	}()

	var err error
	report.Normalize, err = p.normalize(ctx, stages)
	if err != nil {
		return report, err
	}

	report.Build, err = p.build(ctx, stages, report.Normalize.Records)
	if err != nil {
		return report, err
	}

	report.Load, report.IndexCreated, err = p.load(ctx, stages)
	if err != nil {
		return report, err
	}

	logger.Info("pipeline finished",
		"records", len(report.Normalize.Records),
		"documents", report.Build.Written,
		"indexed", report.Load.Indexed,
		"failed", report.Load.Failed,
		"elapsed", time.Since(start))
	return report, nil
}

// Normalize runs the normalize stage on the configured source.
func (p *Pipeline) Normalize(ctx context.Context) (*normalize.Result, error) {
	return p.normalize(ctx, p.base)
}

// Build runs the build stage on records.
func (p *Pipeline) Build(ctx context.Context, records []core.CleanRecord) (*ingestion.BuildResult, error) {
	return p.build(ctx, p.base, records)
}

// BuildFromSnapshot runs the build stage on the configured snapshot file.
func (p *Pipeline) BuildFromSnapshot(ctx context.Context) (*ingestion.BuildResult, error) {
	records, err := normalize.ReadSnapshot(p.cfg.Source.SnapshotPath)
	if err != nil {
		return nil, &core.StageError{Stage: core.StageBuild, Err: err}
	}
	return p.build(ctx, p.base, records)
}

// Load ensures the index exists and bulk loads every stored document.
func (p *Pipeline) Load(ctx context.Context) (*index.LoadStats, bool, error) {
	return p.load(ctx, p.base)
}

func (p *Pipeline) normalize(ctx context.Context, logger *slog.Logger) (*normalize.Result, error) {
	n, err := normalize.NewNormalizer(
		normalize.WithSnapshotPath(p.cfg.Source.SnapshotPath),
		normalize.WithLogger(logger),
	)
	if err != nil {
		return nil, &core.StageError{Stage: core.StageNormalize, Err: err}
	}
	result, err := n.Normalize(ctx, p.cfg.Source.CSV)
	if err != nil {
		return nil, &core.StageError{Stage: core.StageNormalize, Err: err}
	}
	return result, nil
}

func (p *Pipeline) build(ctx context.Context, logger *slog.Logger, records []core.CleanRecord) (*ingestion.BuildResult, error) {
	opts := []ingestion.Option{
		ingestion.WithDimensions(p.cfg.Embedding.Dimensions),
		ingestion.WithRetry(p.cfg.Embedding.MaxAttempts, p.cfg.Embedding.RetryDelay.Duration),
		ingestion.WithFailurePolicy(p.cfg.FailurePolicy()),
		ingestion.WithLogger(logger),
	}
	if p.cfg.Embedding.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(p.cfg.Embedding.PoolSize))
	}
	if p.images != nil {
		opts = append(opts, ingestion.WithImageResolver(p.images))
	}
	if p.progress != nil {
		opts = append(opts, ingestion.WithProgress(p.progress, p.progressInterval))
	}

	builder, err := ingestion.NewBuilder(p.docs, p.embedder, opts...)
	if err != nil {
		return nil, &core.StageError{Stage: core.StageBuild, Err: err}
	}
	defer builder.Release()

	result, err := builder.Build(ctx, records)
	if err != nil {
		return result, &core.StageError{Stage: core.StageBuild, Err: err}
	}
	return result, nil
}

func (p *Pipeline) load(ctx context.Context, logger *slog.Logger) (*index.LoadStats, bool, error) {
	loader, err := index.NewLoader(p.indexStore,
		index.WithIndexName(p.cfg.Index.Name),
		index.WithMapping(schema.NewMapping(p.cfg.Embedding.Dimensions)),
		index.WithBatchSize(p.cfg.Index.BatchSize),
		index.WithLogger(logger),
	)
	if err != nil {
		return nil, false, &core.StageError{Stage: core.StageLoad, Err: err}
	}

	if err := loader.Connect(ctx); err != nil {
		return nil, false, &core.StageError{Stage: core.StageLoad, Err: err}
	}
	created, err := loader.EnsureIndex(ctx)
	if err != nil {
		return nil, false, &core.StageError{Stage: core.StageLoad, Err: err}
	}

	stats, err := loader.BulkLoad(ctx, p.docs)
	if err != nil {
		return stats, created, &core.StageError{Stage: core.StageLoad, Err: err}
	}

	if count, err := loader.Count(ctx); err == nil {
		logger.Info("index document count", "component", "pipeline", "count", count)
	} else {
		logger.Warn("could not count index documents", "component", "pipeline", "err", err)
	}
	return stats, created, nil
}

// NewSearcher creates a searcher over the configured index, with semantic
// search through the pipeline's embedder and document store.
func (p *Pipeline) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	base := []search.Option{
		search.WithIndexName(p.cfg.Index.Name),
		search.WithEmbedder(p.embedder),
		search.WithDocumentStore(p.docs, 0),
		search.WithLogger(p.base),
	}
	if p.images != nil {
		base = append(base, search.WithImages(p.images))
	}
	return search.NewSearcher(p.indexStore, append(base, opts...)...)
}

// NewReembedder creates a reembedder refreshing every stored document with
// the pipeline's embedder.
func (p *Pipeline) NewReembedder(cfg *reembed.Config, progress io.Writer) *reembed.Reembedder {
	if cfg == nil {
		cfg = reembed.DefaultConfig()
	}
	cfg.Dimensions = p.cfg.Embedding.Dimensions
	return reembed.NewReembedder(p.docs, p.embedder, cfg, progress)
}

// Close releases owned resources in reverse opening order.
func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range slices.Backward(p.closers) {
		if err := c.close(); err != nil {
			p.logger.Error("error closing "+c.name, "err", err)
			errs = append(errs, fmt.Errorf("closing %s: %w", c.name, err))
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
