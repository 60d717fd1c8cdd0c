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

// Package search answers free-text and semantic queries against the pet index.
//
// Text queries match description, type, color and name with boosts 3, 2, 1
// and 1 and tolerate typos. Semantic queries embed the query text and run a
// nearest-neighbor search on the document embeddings; engines without
// vector support fall back to scanning a document store. Ranking is always
// the engine's own relevance score.
//
// Results are projected to the fields a browsing UI shows, with the pet's
// photo resolved or replaced by a placeholder.
package search
