// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"fmt"
	"math"
	"strings"
)

// ValidateDocument validates a PetDocument against the expected vector dimensionality.
//
// Validation rules:
//   - PetID must not be blank
//   - Embedding length must equal dims
//   - Embedding components must be finite
//
// NOT validated:
//   - ImageURL (optional)
//   - Age and PhotoAmount sign (negative values pass through)
func ValidateDocument(doc *PetDocument, dims int) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.PetID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyIdentifier)
	}

	if err := ValidateEmbedding(doc.Embedding, dims); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, doc.PetID, err)
	}

	return nil
}

// ValidateEmbedding checks an embedding vector's length and components.
func ValidateEmbedding(vector []float32, dims int) error {
	if len(vector) != dims {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dims, len(vector))
	}
	for i, v := range vector {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("embedding component %d is not finite", i)
		}
	}
	return nil
}
