package schema

import (
	"errors"
	"fmt"
)

// Reference index settings.
const (
	DefaultIndexName  = "pet_adoption_index"
	DefaultVectorDims = 384
	SimilarityCosine  = "cosine"
)

// FieldType is a search engine field type.
type FieldType string

const (
	FieldKeyword     FieldType = "keyword"
	FieldText        FieldType = "text"
	FieldInteger     FieldType = "integer"
	FieldDenseVector FieldType = "dense_vector"
)

// Document field names.
const (
	FieldPetID       = "pet_id"
	FieldPetType     = "type"
	FieldName        = "name"
	FieldAge         = "age"
	FieldBreed       = "breed"
	FieldGender      = "gender"
	FieldColor       = "color"
	FieldDescription = "description"
	FieldPhotoAmount = "photo_amount"
	FieldImageURL    = "image_url"
	FieldEmbedding   = "embedding"
)

// Field describes one property of the index mapping.
// Dims, Similarity and Indexed only apply to dense vector fields.
type Field struct {
	Name       string
	Type       FieldType
	Dims       int
	Similarity string
	Indexed    bool
}

// IndexMapping is the schema declared once when the index is created.
type IndexMapping struct {
	Fields []Field
}

// DefaultMapping returns the reference mapping with a 384 dimension cosine vector.
func DefaultMapping() *IndexMapping {
	return NewMapping(DefaultVectorDims)
}

// NewMapping returns the reference mapping with the given vector dimensionality.
func NewMapping(dims int) *IndexMapping {
	return &IndexMapping{
		Fields: []Field{
			{Name: FieldPetID, Type: FieldKeyword},
			{Name: FieldPetType, Type: FieldKeyword},
			{Name: FieldName, Type: FieldText},
			{Name: FieldAge, Type: FieldInteger},
			{Name: FieldBreed, Type: FieldText},
			{Name: FieldGender, Type: FieldKeyword},
			{Name: FieldColor, Type: FieldKeyword},
			{Name: FieldDescription, Type: FieldText},
			{Name: FieldPhotoAmount, Type: FieldInteger},
			{Name: FieldImageURL, Type: FieldKeyword},
			{Name: FieldEmbedding, Type: FieldDenseVector, Dims: dims, Similarity: SimilarityCosine, Indexed: true},
		},
	}
}

// Field returns the named field.
func (m *IndexMapping) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// VectorField returns the dense vector field.
func (m *IndexMapping) VectorField() (Field, bool) {
	for _, f := range m.Fields {
		if f.Type == FieldDenseVector {
			return f, true
		}
	}
	return Field{}, false
}

// VectorDims returns the declared embedding dimensionality, or 0 without a vector field.
func (m *IndexMapping) VectorDims() int {
	f, ok := m.VectorField()
	if !ok {
		return 0
	}
	return f.Dims
}

// Validate checks the mapping declares exactly one usable vector field and no duplicates.
func (m *IndexMapping) Validate() error {
	if m == nil || len(m.Fields) == 0 {
		return errors.New("mapping: no fields declared")
	}
	seen := make(map[string]struct{}, len(m.Fields))
	vectors := 0
	for _, f := range m.Fields {
		if f.Name == "" {
			return errors.New("mapping: field with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("mapping: duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Type {
		case FieldKeyword, FieldText, FieldInteger:
		case FieldDenseVector:
			vectors++
			if f.Dims <= 0 {
				return fmt.Errorf("mapping: vector field %q needs positive dims", f.Name)
			}
		default:
			return fmt.Errorf("mapping: field %q has unsupported type %q", f.Name, f.Type)
		}
	}
	if vectors != 1 {
		return fmt.Errorf("mapping: expected exactly one vector field, found %d", vectors)
	}
	return nil
}
