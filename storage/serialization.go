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

package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/poiesic/petindex/core"
)

// MarshalDocument serializes a PetDocument to UTF-8 JSON with four-space
// indentation. HTML characters in descriptions are written verbatim.
func MarshalDocument(doc *core.PetDocument) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalDocument deserializes a PetDocument from JSON.
func UnmarshalDocument(data []byte) (*core.PetDocument, error) {
	var doc core.PetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalVector serializes an embedding as little-endian float32 values.
func MarshalVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// UnmarshalVector deserializes an embedding written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: vector payload of %d bytes", ErrTruncatedData, len(data))
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vector, nil
}

// ValidateKey checks that id can address a stored document. Identifiers double
// as file names in storage/fs, so path separators and dot segments are rejected.
func ValidateKey(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: %w", ErrInvalidKey, core.ErrEmptyIdentifier)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, id)
	case strings.ContainsAny(id, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, id)
	}
	return nil
}

// SameContent reports whether two encoded documents are identical by digest.
func SameContent(old, updated []byte) bool {
	if old == nil {
		return false
	}
	return core.Digest(old) == core.Digest(updated)
}
