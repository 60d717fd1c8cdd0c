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

// Package normalize turns the raw pet-adoption CSV into clean records.
//
// Normalization projects each row onto the retained columns, decodes the
// categorical codes to labels, trims text, coerces numbers, and drops repeated
// identifiers keeping the first occurrence. The result is written to a CSV
// snapshot that the document builder can re-read on its own.
//
// # Usage
//
//	n, err := normalize.NewNormalizer(
//	    normalize.WithSnapshotPath("data/processed/processed_csv/train_processed.csv"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := n.Normalize(ctx, "data/raw/pet_description/train.csv")
//	if err != nil {
//	    log.Fatal(err) // wraps core.ErrSourceRead or core.ErrSchema
//	}
//	fmt.Printf("%d records, %d duplicates dropped\n", len(result.Records), result.Duplicates)
//
// # Cleaning Rules
//
//   - Type, Gender and Color1 are decoded through schema code tables; unknown
//     codes become "Unknown".
//   - Name, Breed1 and Description are trimmed; empty or missing become "Unknown".
//   - Age and PhotoAmt parse as numbers truncated toward zero; anything
//     unparseable or missing becomes 0. Negative values are kept.
//   - Cells holding a conventional missing-value marker ("NA", "NaN", "null",
//     ...) count as missing.
//   - Rows with a blank identifier are dropped and counted as invalid.
package normalize
