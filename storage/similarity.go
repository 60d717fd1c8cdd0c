package storage

import (
	"context"
	"math"
	"slices"

	"github.com/poiesic/petindex/core"
)

// FindSimilar scans docs and returns those whose embedding has cosine similarity
// >= minSimilarity with vector, best first, up to limit results.
func FindSimilar(ctx context.Context, docs DocumentStore, vector []float32, minSimilarity float64, limit int) ([]*core.SearchHit, error) {
	var results []*core.SearchHit

	err := docs.ForEachDocument(ctx, func(doc *core.PetDocument) error {
		if len(doc.Embedding) == 0 {
			return nil
		}
		similarity := cosine(vector, doc.Embedding)
		if similarity >= minSimilarity {
			results = append(results, &core.SearchHit{Document: doc, Score: similarity})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *core.SearchHit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// cosine returns the cosine similarity of two vectors, or 0 when either is zero
// or their lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
