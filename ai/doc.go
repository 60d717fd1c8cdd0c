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

// Package ai provides abstractions for the embedding model used by petindex.
//
// The model is a black box that turns a description into a fixed-length
// vector. This package defines that boundary so the document builder never
// depends on a concrete model client.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - EmbeddingCache: Stores vectors keyed by content
//   - AIProvider: Owns an Embedder with explicit Close
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Decorators
//
// NewCachedEmbedder and NewRateLimitedEmbedder wrap any Embedder. They compose:
//
//	embedder := ai.NewRateLimitedEmbedder(provider.Embedder(), 20, 5)
//	embedder = ai.NewCachedEmbedder(embedder, cache, cfg.EmbeddingModel)
//
// The cache sits outside the limiter so cache hits never wait for a token.
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// INTERFACE types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder) return CONCRETE types so tests can inject behavior
// and assert on call counts.
package ai
