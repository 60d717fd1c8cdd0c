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

// Package storage provides the document persistence layer for petindex.
//
// The document builder writes one PetDocument per pet identifier and the index
// loader reads them back. This package defines the DocumentStore interface that
// decouples both stages from where the documents live, so the original
// one-JSON-file-per-pet layout (storage/fs), an embedded BadgerDB database
// (storage/badger) and a plain in-memory map (storage/memory) can be used
// interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.DocumentStore interface to enforce
// abstraction:
//
//	docs, err := fs.NewDocumentStore("data/processed/pets_json")  // returns storage.DocumentStore
//
// Internal helpers and backend types (badger.Backend) may be concrete since
// they are only used within the implementation packages.
//
// # Semantics
//
// Stores are keyed by pet identifier. PutDocument overwrites any prior document
// for the same identifier and reports whether the encoded content changed, so
// re-running the builder over unchanged input is observable as a no-op.
// ForEachDocument visits documents in ascending identifier order.
//
// # Thread Safety
//
// All implementations must be thread-safe: the builder writes documents from
// a worker pool.
//
// # Context Support
//
// All store methods accept context.Context for cancellation. Pass
// context.Background() for operations without specific timeout requirements.
package storage
