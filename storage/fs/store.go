// Package fs stores documents as one JSON file per pet, named <PetID>.json,
// under a single directory. This is the layout downstream tools read.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/storage"
)

const documentExt = ".json"

// Store implements storage.DocumentStore on a directory of JSON files.
type Store struct {
	dir    string
	logger *slog.Logger

	// Serializes compare-and-write per store; file renames are already atomic.
	mu     sync.Mutex
	closed bool
}

var _ storage.DocumentStore = (*Store)(nil)

// NewDocumentStore opens (creating if needed) a document directory.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func NewDocumentStore(dir string) (storage.DocumentStore, error) {
	return NewStore(dir)
}

// NewStore opens (creating if needed) a document directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("fs store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return &Store{
		dir:    dir,
		logger: slog.Default().With("component", "fs-document-store", "dir", dir),
	}, nil
}

// Dir returns the document directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of the document for id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+documentExt)
}

// PutDocument implements storage.DocumentStore.
func (s *Store) PutDocument(ctx context.Context, doc *core.PetDocument) (bool, error) {
	if err := storage.ValidateKey(doc.PetID); err != nil {
		return false, err
	}
	data, err := storage.MarshalDocument(doc)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, storage.ErrStorageClosed
	}

	path := s.Path(doc.PetID)
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if storage.SameContent(old, data) {
		return false, nil
	}

	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// GetDocument implements storage.DocumentStore.
func (s *Store) GetDocument(ctx context.Context, id string) (*core.PetDocument, error) {
	if err := storage.ValidateKey(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	doc, err := storage.UnmarshalDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path(id), err)
	}
	return doc, nil
}

// DeleteDocument implements storage.DocumentStore.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := storage.ValidateKey(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return storage.ErrNotFound
	}
	return err
}

// ForEachDocument implements storage.DocumentStore. Files that are not
// documents (temp files, other extensions) are skipped; a file that fails to
// decode aborts the iteration.
func (s *Store) ForEachDocument(ctx context.Context, fn func(doc *core.PetDocument) error) error {
	ids, err := s.ids()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := s.GetDocument(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// Count implements storage.DocumentStore.
func (s *Store) Count(ctx context.Context) (int, error) {
	ids, err := s.ids()
	return len(ids), err
}

// Close implements storage.DocumentStore.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ids lists document identifiers in ascending order.
func (s *Store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, documentExt) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, documentExt))
	}
	// "a-b.json" sorts before "a.json" although "a" < "a-b".
	slices.Sort(ids)
	return ids, nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
