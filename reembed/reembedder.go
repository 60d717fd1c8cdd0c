package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/ingestion"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to embed per call
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Dimensions is the expected embedding length
	Dimensions int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Dimensions:     schema.DefaultVectorDims,
	}
}

// Result summarizes a reembedding run.
type Result struct {
	Processed int
	Changed   int
	Elapsed   time.Duration
}

// Reembedder orchestrates the reembedding of every stored document.
type Reembedder struct {
	docs      storage.DocumentStore
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(docs storage.DocumentStore, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Dimensions <= 0 {
		config.Dimensions = schema.DefaultVectorDims
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		docs:      docs,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(docs, embedder, config.Dimensions, config.MaxRetries, config.RetryDelay),
		iterator:  NewDocumentIterator(docs, config.BatchSize),
	}
}

// Run re-embeds every stored document.
func (r *Reembedder) Run(ctx context.Context) (*Result, error) {
	total, err := r.docs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	result := &Result{}
	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found (0 documents)\n")
		return result, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		total, r.iterator.batchSize)

	tracker := ingestion.NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(batch []*core.PetDocument) error {
		changed, err := r.processor.Process(ctx, batch)
		result.Changed += changed
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}
		result.Processed += len(batch)
		tracker.Increment(len(batch))
		return nil
	})
	if err != nil {
		return result, err
	}

	tracker.Finish()
	result.Elapsed = tracker.Elapsed()

	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents (%d changed) in %v\n",
		result.Processed, result.Changed, result.Elapsed.Round(time.Millisecond))

	return result, nil
}
