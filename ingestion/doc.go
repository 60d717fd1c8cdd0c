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

// Package ingestion builds searchable pet documents from clean records.
//
// The Builder embeds each record's description through an ai.Embedder,
// assembles a core.PetDocument and persists it through a
// storage.DocumentStore keyed by pet identifier. Embedding calls are
// independent, so they fan out across an ants worker pool; the outcome does
// not depend on completion order because every write is keyed.
//
// # Usage
//
//	builder, err := ingestion.NewBuilder(docs, provider.Embedder(),
//	    ingestion.WithDimensions(provider.Dimensions()),
//	    ingestion.WithPoolSize(4),
//	    ingestion.WithRetry(3, 500*time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer builder.Release()
//
//	result, err := builder.Build(ctx, records)
//
// # Failure Policy
//
// By default the first embedding failure aborts the whole build with
// core.ErrEmbedding (FailFast). With SkipAndReport the failing record is
// skipped, recorded in BuildResult.Failures, and the build continues.
// Storage failures always abort.
//
// # Idempotence
//
// Rebuilding the same records overwrites each document in place. Documents
// whose encoding did not change are not rewritten and are counted in
// BuildResult.Unchanged.
package ingestion
