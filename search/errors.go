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

package search

import "errors"

var (
	// ErrIndexStoreRequired is returned when an index store is not provided.
	ErrIndexStoreRequired = errors.New("index store required")

	// ErrEmbedderRequired is returned when semantic search is requested without an embedder.
	ErrEmbedderRequired = errors.New("embedder required for semantic search")

	// ErrEmptyQuery is returned when the query is blank after normalization.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrInvalidTopK is returned when the result count is not positive.
	ErrInvalidTopK = errors.New("top-k must be positive")
)
