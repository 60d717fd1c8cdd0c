package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// Digest returns a hex encoded BLAKE2b-256 digest of data.
// Identical content always produces identical digests, which lets the
// builder detect documents that did not change between runs.
func Digest(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RawRecord is one row of the source dataset keyed by header name.
// Columns that are not retained are carried but ignored.
type RawRecord struct {
	Line   int // 1-based line number in the source file, header is line 1
	Fields map[string]string
}

// Get returns the value of a column and whether the column was present in the row.
func (r RawRecord) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// CleanRecord is a normalized row. It is created once per surviving raw row
// and never mutated afterwards.
type CleanRecord struct {
	PetID       string
	Type        string
	Name        string
	Age         int
	Breed       string
	Gender      string
	Color       string
	Description string
	PhotoAmount int
}

// PetDocument is the searchable unit built from exactly one CleanRecord.
type PetDocument struct {
	PetID       string    `json:"pet_id"`
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Breed       string    `json:"breed"`
	Gender      string    `json:"gender"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	PhotoAmount int       `json:"photo_amount"`
	Embedding   []float32 `json:"embedding"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// NewPetDocument assembles a document from a clean record and its embedding.
func NewPetDocument(record CleanRecord, embedding []float32) *PetDocument {
	return &PetDocument{
		PetID:       record.PetID,
		Type:        record.Type,
		Name:        record.Name,
		Age:         record.Age,
		Breed:       record.Breed,
		Gender:      record.Gender,
		Color:       record.Color,
		Description: record.Description,
		PhotoAmount: record.PhotoAmount,
		Embedding:   embedding,
	}
}

// SearchHit is a document returned by the search engine with its relevance score.
// Embedding is usually empty because engines are not asked to return it.
type SearchHit struct {
	Document *PetDocument
	Score    float64
}
