package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// ImageResolver finds the public URL of a pet's primary photo.
// images.Locator satisfies it.
type ImageResolver interface {
	ImageURL(petID string) (string, bool)
}

// RecordFailure describes a record skipped under SkipAndReport.
type RecordFailure struct {
	PetID string
	Err   error
}

// BuildResult reports the outcome of Build.
type BuildResult struct {
	// Written counts documents persisted, including Unchanged ones.
	Written int
	// Unchanged counts documents whose stored encoding was already identical.
	Unchanged int
	// Skipped counts records dropped under SkipAndReport.
	Skipped  int
	Failures []RecordFailure
	Elapsed  time.Duration
}

// Builder turns clean records into persisted PetDocuments.
type Builder struct {
	docs     storage.DocumentStore
	embedder ai.Embedder
	pool     *ants.Pool

	dims             int
	maxAttempts      int
	baseDelay        time.Duration
	policy           FailurePolicy
	images           ImageResolver
	progress         io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if b.pool != nil {
			b.pool.Release()
		}
		b.pool = pool
		return nil
	}
}

// WithDimensions sets the expected embedding length.
// Default is the reference mapping's 384.
func WithDimensions(dims int) Option {
	return func(b *Builder) error {
		if dims <= 0 {
			return ErrInvalidDimensions
		}
		b.dims = dims
		return nil
	}
}

// WithRetry retries each embedding call up to maxAttempts times, doubling
// baseDelay between attempts. Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.baseDelay = baseDelay
		return nil
	}
}

// WithFailurePolicy sets how embedding failures are handled. Default is FailFast.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(b *Builder) error {
		b.policy = policy
		return nil
	}
}

// WithImageResolver sets image_url on documents whose photo exists.
func WithImageResolver(images ImageResolver) Option {
	return func(b *Builder) error {
		b.images = images
		return nil
	}
}

// WithProgress writes a progress line to w every interval documents.
func WithProgress(w io.Writer, interval int) Option {
	return func(b *Builder) error {
		b.progress = w
		b.progressInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a document builder writing to docs.
func NewBuilder(docs storage.DocumentStore, embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if docs == nil {
		return nil, ErrDocumentStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Builder{
		docs:        docs,
		embedder:    embedder,
		dims:        schema.DefaultVectorDims,
		maxAttempts: 1,
		policy:      FailFast,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			b.Release()
			return nil, err
		}
	}

	if b.pool == nil {
		if err := WithPoolSize(runtime.NumCPU() / 2)(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "document-builder")

	return b, nil
}

// Release releases the worker pool.
// The builder should not be used after calling Release.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Build embeds and persists one document per record. Under FailFast the
// first embedding failure cancels outstanding work and is returned wrapped
// in core.ErrEmbedding; documents already written stay valid.
func (b *Builder) Build(ctx context.Context, records []core.CleanRecord) (*BuildResult, error) {
	start := time.Now()
	b.logger.Info("building documents", "records", len(records), "policy", b.policy.String())

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	emb := &descriptionEmbedder{
		embedder:    b.embedder,
		dims:        b.dims,
		maxAttempts: b.maxAttempts,
		baseDelay:   b.baseDelay,
		logger:      b.logger,
	}

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(records), b.progressInterval)
		tracker.Start()
	}

	var (
		written   atomic.Int64
		unchanged atomic.Int64
		mu        sync.Mutex
		failures  []RecordFailure
		wg        sync.WaitGroup
	)

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			changed, err := b.buildOne(ctx, emb, record)
			if err != nil {
				if errors.Is(err, core.ErrEmbedding) && b.policy == SkipAndReport && ctx.Err() == nil {
					b.logger.Warn("skipping record", "pet_id", record.PetID, "err", err)
					mu.Lock()
					failures = append(failures, RecordFailure{PetID: record.PetID, Err: err})
					mu.Unlock()
					if tracker != nil {
						tracker.Increment(1)
					}
					return
				}
				cancel(err)
				return
			}

			written.Add(1)
			if !changed {
				unchanged.Add(1)
			}
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			cancel(fmt.Errorf("submitting record %s: %w", record.PetID, err))
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	result := &BuildResult{
		Written:   int(written.Load()),
		Unchanged: int(unchanged.Load()),
		Skipped:   len(failures),
		Failures:  failures,
		Elapsed:   time.Since(start),
	}

	if err := context.Cause(ctx); err != nil {
		b.logger.Error("build aborted", "written", result.Written, "err", err)
		return result, err
	}

	b.logger.Info("documents built",
		"written", result.Written,
		"unchanged", result.Unchanged,
		"skipped", result.Skipped,
		"elapsed", result.Elapsed)
	return result, nil
}

// buildOne embeds, assembles and persists one document.
func (b *Builder) buildOne(ctx context.Context, emb *descriptionEmbedder, record core.CleanRecord) (bool, error) {
	if err := storage.ValidateKey(record.PetID); err != nil {
		return false, fmt.Errorf("%w: %w", core.ErrInvalidDocument, err)
	}

	vector, err := emb.embed(ctx, record.PetID, record.Description)
	if err != nil {
		return false, err
	}

	doc := core.NewPetDocument(record, vector)
	if b.images != nil {
		if url, ok := b.images.ImageURL(record.PetID); ok {
			doc.ImageURL = url
		}
	}

	changed, err := b.docs.PutDocument(ctx, doc)
	if err != nil {
		return false, fmt.Errorf("writing document %s: %w", record.PetID, err)
	}
	return changed, nil
}
