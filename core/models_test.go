package core

import (
	"errors"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same digest", content: `{"pet_id":"P1"}`},
		{name: "empty content", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d1 := Digest([]byte(tt.content))
			d2 := Digest([]byte(tt.content))

			if d1 != d2 {
				t.Errorf("Digest() produced different values for same content: %s vs %s", d1, d2)
			}
			if len(d1) != 64 {
				t.Errorf("Digest() length = %d, want 64 hex chars", len(d1))
			}
		})
	}
}

func TestDigest_Different(t *testing.T) {
	if Digest([]byte("content1")) == Digest([]byte("content2")) {
		t.Errorf("Digest() produced same value for different content")
	}
}

func TestNewPetDocument(t *testing.T) {
	record := CleanRecord{
		PetID:       "P1",
		Type:        "Dog",
		Name:        "Rex",
		Age:         2,
		Breed:       "307",
		Gender:      "Female",
		Color:       "Golden",
		Description: "Playful",
		PhotoAmount: 0,
	}
	vector := []float32{0.1, 0.2}

	doc := NewPetDocument(record, vector)

	if doc.PetID != "P1" || doc.Type != "Dog" || doc.Gender != "Female" || doc.Color != "Golden" {
		t.Errorf("NewPetDocument() copied wrong categorical fields: %+v", doc)
	}
	if doc.Age != 2 || doc.PhotoAmount != 0 {
		t.Errorf("NewPetDocument() copied wrong numeric fields: %+v", doc)
	}
	if len(doc.Embedding) != 2 {
		t.Errorf("NewPetDocument() embedding length = %d, want 2", len(doc.Embedding))
	}
	if doc.ImageURL != "" {
		t.Errorf("NewPetDocument() should not set ImageURL, got %q", doc.ImageURL)
	}
}

func TestRawRecord_Get(t *testing.T) {
	r := RawRecord{Line: 2, Fields: map[string]string{"PetID": "P1", "Name": ""}}

	if v, ok := r.Get("PetID"); !ok || v != "P1" {
		t.Errorf("Get(PetID) = %q, %v", v, ok)
	}
	if _, ok := r.Get("Name"); !ok {
		t.Errorf("Get(Name) should report present for empty value")
	}
	if _, ok := r.Get("Missing"); ok {
		t.Errorf("Get(Missing) should report absent")
	}
}

func TestStageError(t *testing.T) {
	err := &StageError{Stage: StageBuild, Err: ErrEmbedding}

	if err.Error() != "stage build failed: embedding error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("StageError should unwrap to cause")
	}

	var stageErr *StageError
	if !errors.As(error(err), &stageErr) || stageErr.Stage != StageBuild {
		t.Errorf("errors.As failed to recover stage")
	}
}
