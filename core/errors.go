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

import "errors"

// Pipeline error taxonomy
var (
	// ErrSourceRead indicates the raw dataset could not be read.
	ErrSourceRead = errors.New("source read error")

	// ErrSchema indicates a required column is missing from a tabular file.
	ErrSchema = errors.New("schema error")

	// ErrEmbedding indicates embedding inference failed for a record.
	ErrEmbedding = errors.New("embedding error")

	// ErrDimensionMismatch indicates an embedding has the wrong length for the mapping.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrConnection indicates the search engine could not be reached.
	ErrConnection = errors.New("connection error")

	// ErrIndexCreation indicates the search engine rejected index creation.
	ErrIndexCreation = errors.New("index creation error")

	// ErrBulkPartialFailure indicates some documents were rejected during a bulk upsert.
	// It is reported, never fatal.
	ErrBulkPartialFailure = errors.New("bulk write partially failed")

	// ErrInvalidDocument indicates a PetDocument failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyIdentifier indicates a record or document has no identifier.
	ErrEmptyIdentifier = errors.New("identifier cannot be empty")
)

// Stage names used in StageError.
const (
	StageNormalize = "normalize"
	StageBuild     = "build"
	StageLoad      = "load"
)

// StageError names the pipeline stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "stage " + e.Stage + " failed: " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
