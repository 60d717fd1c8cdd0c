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

// Package petindex turns a pet-adoption CSV into searchable documents.
//
// A Pipeline runs three stages in order:
//
//   - normalize: clean and deduplicate the raw rows and write a snapshot CSV
//   - build: embed each description and persist one document per pet
//   - load: ensure the search index exists and bulk upsert every document
//
// Stages can also be run one at a time. The embedder, document store and
// index store are built from a config.Config or injected with options, and
// are released by Close.
package petindex
