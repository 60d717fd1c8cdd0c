package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/petindex/ai"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// DefaultTopK is the number of results a browsing page shows.
const DefaultTopK = 12

// Mode selects how a query is matched.
type Mode int

const (
	// ModeText is a fuzzy weighted multi-field match.
	ModeText Mode = iota
	// ModeSemantic is a nearest-neighbor search on the query embedding.
	ModeSemantic
)

func (m Mode) String() string {
	if m == ModeSemantic {
		return "semantic"
	}
	return "text"
}

// ParseMode parses "text" or "semantic".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "text":
		return ModeText, nil
	case "semantic":
		return ModeSemantic, nil
	}
	return ModeText, fmt.Errorf("unknown search mode %q", s)
}

// DefaultFields are the text query fields and their boosts.
var DefaultFields = []index.WeightedField{
	{Name: schema.FieldDescription, Boost: 3},
	{Name: schema.FieldPetType, Boost: 2},
	{Name: schema.FieldColor, Boost: 1},
	{Name: schema.FieldName, Boost: 1},
}

// ImageSource resolves the photo shown for a pet.
type ImageSource interface {
	URL(petID string) string
}

// Result is one pet as shown to a browsing user.
type Result struct {
	PetID       string  `json:"pet_id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Score       float64 `json:"score"`
}

// Searcher runs queries against one index.
type Searcher struct {
	store         index.Store
	indexName     string
	fields        []index.WeightedField
	topK          int
	embedder      ai.Embedder
	docs          storage.DocumentStore
	minSimilarity float64
	images        ImageSource
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithIndexName sets the queried index. Default is schema.DefaultIndexName.
func WithIndexName(name string) Option {
	return func(s *Searcher) error {
		if name == "" {
			return index.ErrIndexNameRequired
		}
		s.indexName = name
		return nil
	}
}

// WithTopK sets the default number of results. Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		s.topK = k
		return nil
	}
}

// WithFields replaces the weighted text query fields.
func WithFields(fields ...index.WeightedField) Option {
	return func(s *Searcher) error {
		if len(fields) > 0 {
			s.fields = fields
		}
		return nil
	}
}

// WithEmbedder enables semantic search.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		s.embedder = embedder
		return nil
	}
}

// WithDocumentStore sets the documents scanned when the index store cannot
// run vector queries. Only hits with cosine similarity >= minSimilarity are kept.
func WithDocumentStore(docs storage.DocumentStore, minSimilarity float64) Option {
	return func(s *Searcher) error {
		s.docs = docs
		s.minSimilarity = minSimilarity
		return nil
	}
}

// WithImages sets the photo resolver for results without an image_url.
func WithImages(images ImageSource) Option {
	return func(s *Searcher) error {
		s.images = images
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over store.
func NewSearcher(store index.Store, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrIndexStoreRequired
	}

	s := &Searcher{
		store:     store,
		indexName: schema.DefaultIndexName,
		fields:    DefaultFields,
		topK:      DefaultTopK,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "searcher", "index", s.indexName)
	return s, nil
}

// Search runs a text query and returns up to the configured top-K results.
func (s *Searcher) Search(ctx context.Context, query string) ([]*Result, error) {
	return s.SearchWithMonitor(ctx, query, ModeText, 0, nil)
}

// SearchWithMonitor runs query in mode and returns up to size results, or the
// configured top-K when size is zero. The monitor receives callbacks at each step.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, mode Mode, size int, monitor SearchMonitor) ([]*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if size <= 0 {
		size = s.topK
	}

	query = NormalizeQuery(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	monitor.Start(query, mode)

	var (
		hits []*core.SearchHit
		err  error
	)
	switch mode {
	case ModeSemantic:
		hits, err = s.semantic(ctx, query, size, monitor)
	default:
		hits, err = s.store.Search(ctx, s.indexName, &index.Query{
			Text:   query,
			Fields: s.fields,
			Fuzzy:  true,
			Size:   size,
		})
	}
	if err != nil {
		s.logger.Error("search failed", "query", query, "mode", mode, "err", err)
		return nil, err
	}
	monitor.AfterQuery(len(hits))

	results := make([]*Result, 0, len(hits))
	for _, hit := range hits {
		if hit == nil || hit.Document == nil {
			continue
		}
		results = append(results, s.project(hit))
	}
	if len(results) > size {
		results = results[:size]
	}
	monitor.Finish(results)

	s.logger.Debug("search complete", "query", query, "mode", mode, "results", len(results))
	return results, nil
}

// semantic embeds query and runs a kNN query, scanning the document store
// when the engine has no vector support.
func (s *Searcher) semantic(ctx context.Context, query string, size int, monitor SearchMonitor) ([]*core.SearchHit, error) {
	if s.embedder == nil {
		return nil, ErrEmbedderRequired
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEmbedding, err)
	}
	monitor.AfterEmbedding(len(vector))

	hits, err := s.store.Search(ctx, s.indexName, &index.Query{Vector: vector, Size: size})
	if errors.Is(err, index.ErrUnsupportedQuery) && s.docs != nil {
		s.logger.Debug("index store has no vector search, scanning documents")
		monitor.Fallback(err)
		return storage.FindSimilar(ctx, s.docs, vector, s.minSimilarity, size)
	}
	return hits, err
}

func (s *Searcher) project(hit *core.SearchHit) *Result {
	doc := hit.Document
	image := doc.ImageURL
	if image == "" && s.images != nil {
		image = s.images.URL(doc.PetID)
	}
	return &Result{
		PetID:       doc.PetID,
		Name:        doc.Name,
		Type:        doc.Type,
		Color:       doc.Color,
		Description: doc.Description,
		Image:       image,
		Score:       hit.Score,
	}
}
