package petindex

import (
	"io"
	"log/slog"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/storage"
)

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithEmbedder injects the embedder. The pipeline does not close it.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) error {
		p.embedder = embedder
		return nil
	}
}

// WithDocumentStore injects the document store. The pipeline does not close it.
func WithDocumentStore(docs storage.DocumentStore) Option {
	return func(p *Pipeline) error {
		p.docs = docs
		return nil
	}
}

// WithIndexStore injects the search engine. The pipeline does not close it.
func WithIndexStore(store index.Store) Option {
	return func(p *Pipeline) error {
		p.indexStore = store
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithProgress writes build progress to w every interval documents.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.progressInterval = interval
		return nil
	}
}
