// Package bleve implements index.Store on embedded Bleve indexes, so the
// pipeline can run and be searched without an external engine.
//
// Each named index lives in its own directory under the store root, or only
// in memory when the root is empty. Bleve's default build has no vector
// support, so the embedding is kept in the stored source document but is not
// searchable; nearest-neighbor queries return index.ErrUnsupportedQuery.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/index"
	"github.com/poiesic/petindex/schema"
	"github.com/poiesic/petindex/storage"
)

// sourceField holds the full encoded document, stored but not indexed.
const sourceField = "_source"

// Store implements index.Store over Bleve.
type Store struct {
	root    string
	mu      sync.Mutex
	indexes map[string]bleve.Index
	closed  bool
	logger  *slog.Logger
}

var _ index.Store = (*Store)(nil)

// NewStore opens a Bleve store rooted at root. An empty root keeps every
// index in memory.
//
// Returns index.Store interface to enforce abstraction.
func NewStore(root string) (index.Store, error) {
	return newStore(root)
}

// NewMemoryStore returns a memory-only store.
func NewMemoryStore() index.Store {
	s, _ := newStore("")
	return s
}

func newStore(root string) (*Store, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, err
		}
	}
	return &Store{
		root:    root,
		indexes: make(map[string]bleve.Index),
		logger:  slog.Default().With("component", "bleve-store"),
	}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name+".bleve")
}

// Ping reports whether the store is open.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return storage.ErrStorageClosed
	}
	return nil
}

// IndexExists reports whether the named index exists, opening it from disk if needed.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.open(name)
	if errors.Is(err, index.ErrIndexNotFound) {
		return false, nil
	}
	return err == nil, err
}

// open returns the named index, loading it from disk on first use.
func (s *Store) open(name string) (bleve.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	if idx, ok := s.indexes[name]; ok {
		return idx, nil
	}
	if s.root == "" {
		return nil, fmt.Errorf("%w: %s", index.ErrIndexNotFound, name)
	}

	if _, err := os.Stat(s.path(name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", index.ErrIndexNotFound, name)
	}
	idx, err := bleve.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	s.indexes[name] = idx
	return idx, nil
}

// CreateIndex creates the named index with a mapping translated from m.
func (s *Store) CreateIndex(ctx context.Context, name string, m *schema.IndexMapping) error {
	im, err := BuildMapping(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}
	if _, ok := s.indexes[name]; ok {
		return fmt.Errorf("%w: %s", index.ErrIndexAlreadyExists, name)
	}

	var idx bleve.Index
	if s.root == "" {
		idx, err = bleve.NewMemOnly(im)
	} else {
		idx, err = bleve.New(s.path(name), im)
		if errors.Is(err, bleve.ErrorIndexPathExists) {
			return fmt.Errorf("%w: %s", index.ErrIndexAlreadyExists, name)
		}
	}
	if err != nil {
		return err
	}

	s.indexes[name] = idx
	s.logger.Info("bleve index created", "index", name, "on_disk", s.root != "")
	return nil
}

// BuildMapping translates a schema mapping into a Bleve index mapping. Only
// declared fields are indexed; the dense vector is carried in the source.
func BuildMapping(m *schema.IndexMapping) (*mapping.IndexMappingImpl, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	doc := bleve.NewDocumentStaticMapping()
	for _, f := range m.Fields {
		var fm *mapping.FieldMapping
		switch f.Type {
		case schema.FieldKeyword:
			fm = bleve.NewKeywordFieldMapping()
		case schema.FieldText:
			fm = bleve.NewTextFieldMapping()
		case schema.FieldInteger:
			fm = bleve.NewNumericFieldMapping()
		case schema.FieldDenseVector:
			continue
		}
		fm.Store = false
		doc.AddFieldMappingsAt(f.Name, fm)
	}

	src := bleve.NewTextFieldMapping()
	src.Index = false
	src.Store = true
	src.IncludeInAll = false
	src.IncludeTermVectors = false
	doc.AddFieldMappingsAt(sourceField, src)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im, nil
}

// Bulk indexes docs in one Bleve batch. Indexing an existing id replaces it.
func (s *Store) Bulk(ctx context.Context, name string, docs []*core.PetDocument) ([]index.BulkItemResult, error) {
	idx, err := s.open(name)
	if err != nil {
		return nil, err
	}

	results := make([]index.BulkItemResult, len(docs))
	batch := idx.NewBatch()
	for i, doc := range docs {
		results[i].ID = doc.PetID
		fields, err := documentFields(doc)
		if err != nil {
			results[i].Err = err
			continue
		}
		if err := batch.Index(doc.PetID, fields); err != nil {
			results[i].Err = err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := idx.Batch(batch); err != nil {
		return nil, err
	}
	return results, nil
}

// documentFields flattens doc into the indexed fields plus its encoded source.
func documentFields(doc *core.PetDocument) (map[string]any, error) {
	src, err := storage.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		schema.FieldPetID:       doc.PetID,
		schema.FieldPetType:     doc.Type,
		schema.FieldName:        doc.Name,
		schema.FieldAge:         doc.Age,
		schema.FieldBreed:       doc.Breed,
		schema.FieldGender:      doc.Gender,
		schema.FieldColor:       doc.Color,
		schema.FieldDescription: doc.Description,
		schema.FieldPhotoAmount: doc.PhotoAmount,
		schema.FieldImageURL:    doc.ImageURL,
		sourceField:             string(src),
	}, nil
}

// Search runs a weighted disjunction of match queries, one per field.
func (s *Store) Search(ctx context.Context, name string, q *index.Query) ([]*core.SearchHit, error) {
	if q.IsVector() {
		return nil, fmt.Errorf("%w: vector search", index.ErrUnsupportedQuery)
	}
	idx, err := s.open(name)
	if err != nil {
		return nil, err
	}

	matches := make([]query.Query, 0, len(q.Fields))
	for _, f := range q.Fields {
		mq := bleve.NewMatchQuery(q.Text)
		mq.SetField(f.Name)
		if f.Boost > 0 {
			mq.SetBoost(f.Boost)
		}
		if q.Fuzzy {
			mq.SetFuzziness(1)
		}
		matches = append(matches, mq)
	}
	var bq query.Query
	if len(matches) == 0 {
		bq = bleve.NewMatchQuery(q.Text)
	} else {
		bq = bleve.NewDisjunctionQuery(matches...)
	}

	req := bleve.NewSearchRequestOptions(bq, q.Size, 0, false)
	req.Fields = []string{sourceField}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	hits := make([]*core.SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		raw, ok := h.Fields[sourceField].(string)
		if !ok {
			s.logger.Warn("hit without stored source", "id", h.ID)
			continue
		}
		doc, err := storage.UnmarshalDocument([]byte(raw))
		if err != nil {
			return nil, err
		}
		hits = append(hits, &core.SearchHit{Document: doc, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of documents in the named index.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	idx, err := s.open(name)
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	return int(n), err
}

// Close closes every open index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for name, idx := range s.indexes {
		if err := idx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
	}
	s.indexes = nil
	return errors.Join(errs...)
}
