package normalize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/petindex/core"
)

// Result reports the outcome of one normalization run.
type Result struct {
	Records      []core.CleanRecord
	RawRows      int
	Duplicates   int
	Invalid      int
	SnapshotPath string
}

// Normalizer cleans a raw dataset and persists the cleaned snapshot.
type Normalizer struct {
	snapshotPath string
	logger       *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer) error

// WithSnapshotPath sets where the cleaned snapshot is written.
// An empty path disables the snapshot.
func WithSnapshotPath(path string) Option {
	return func(n *Normalizer) error {
		n.snapshotPath = path
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) error {
		if logger == nil {
			return ErrLoggerRequired
		}
		n.logger = logger
		return nil
	}
}

// NewNormalizer creates a Normalizer writing to DefaultSnapshotPath unless configured otherwise.
func NewNormalizer(opts ...Option) (*Normalizer, error) {
	n := &Normalizer{
		snapshotPath: DefaultSnapshotPath,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}
	n.logger = n.logger.With("component", "normalizer")
	return n, nil
}

// Normalize reads the CSV at source, cleans it and writes the snapshot.
func (n *Normalizer) Normalize(ctx context.Context, source string) (*Result, error) {
	n.logger.Info("loading raw dataset", "path", source)

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrSourceRead, err)
	}
	defer f.Close()

	return n.NormalizeReader(ctx, f)
}

// NormalizeReader is Normalize over an already open CSV stream.
func (n *Normalizer) NormalizeReader(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := ReadRows(ctx, r)
	if err != nil {
		return nil, err
	}

	cleaned := CleanRows(rows)
	if cleaned.Duplicates > 0 {
		n.logger.Warn("duplicate pet identifiers dropped", "duplicates", cleaned.Duplicates)
	}
	if cleaned.Invalid > 0 {
		n.logger.Warn("rows without identifier dropped", "invalid", cleaned.Invalid)
	}

	result := &Result{
		Records:    cleaned.Records,
		RawRows:    len(rows),
		Duplicates: cleaned.Duplicates,
		Invalid:    cleaned.Invalid,
	}

	if n.snapshotPath != "" {
		if err := WriteSnapshot(n.snapshotPath, result.Records); err != nil {
			return nil, fmt.Errorf("writing snapshot: %w", err)
		}
		result.SnapshotPath = n.snapshotPath
		n.logger.Info("processed data saved", "path", n.snapshotPath, "records", len(result.Records))
	}

	return result, nil
}
