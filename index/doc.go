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

// Package index loads built pet documents into a search engine.
//
// A Loader drives one remote index through a small state machine: Connect
// verifies the engine is reachable before anything is written, EnsureIndex
// creates the index with the fixed schema mapping when it is absent (and is a
// no-op when present), and BulkLoad upserts every stored document keyed by
// its pet identifier. Re-running a load overwrites documents instead of
// duplicating them.
//
// The engine itself sits behind the Store interface. Two backends exist:
//
//   - index/elastic talks to Elasticsearch over HTTP.
//   - index/bleve keeps an embedded Bleve index on disk or in memory.
//
// Per-document rejections from a bulk write are reported in LoadStats and
// never abort the load; LoadStats.Err turns them into a
// core.ErrBulkPartialFailure error for callers that want one.
package index
