package core

import (
	"errors"
	"math"
	"testing"
)

func vectorOf(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 0.5
	}
	return v
}

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *PetDocument
		dims    int
		wantErr error
	}{
		{
			name:    "valid document",
			doc:     &PetDocument{PetID: "P1", Embedding: vectorOf(4)},
			dims:    4,
			wantErr: nil,
		},
		{
			name:    "negative numbers pass",
			doc:     &PetDocument{PetID: "P1", Age: -1, PhotoAmount: -3, Embedding: vectorOf(4)},
			dims:    4,
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			dims:    4,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "blank identifier",
			doc:     &PetDocument{PetID: "  ", Embedding: vectorOf(4)},
			dims:    4,
			wantErr: ErrEmptyIdentifier,
		},
		{
			name:    "short embedding",
			doc:     &PetDocument{PetID: "P1", Embedding: vectorOf(3)},
			dims:    4,
			wantErr: ErrDimensionMismatch,
		},
		{
			name:    "missing embedding",
			doc:     &PetDocument{PetID: "P1"},
			dims:    384,
			wantErr: ErrDimensionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc, tt.dims)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("ValidateDocument() error should wrap ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestValidateEmbedding_NonFinite(t *testing.T) {
	v := vectorOf(3)
	v[1] = float32(math.NaN())
	if err := ValidateEmbedding(v, 3); err == nil {
		t.Errorf("ValidateEmbedding() should reject NaN components")
	}

	v[1] = float32(math.Inf(1))
	if err := ValidateEmbedding(v, 3); err == nil {
		t.Errorf("ValidateEmbedding() should reject Inf components")
	}
}
