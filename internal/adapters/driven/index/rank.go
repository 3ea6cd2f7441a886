// Package index provides ranking helpers shared by the vector index
// implementations.
package index

import (
	"math"
	"sort"

	"github.com/knowgrid/knowgrid/internal/core/domain"
	"github.com/knowgrid/knowgrid/internal/core/ports/driven"
)

// Cosine computes the cosine similarity between two vectors. Mismatched
// lengths and zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 bounds a similarity score to [0,1]. Cosine similarity of raw
// embeddings can be slightly negative; reported scores never are.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TopK scores candidates against the query, keeps those matching the
// filter, and returns the k best by descending similarity. Ties break
// on chunk id so results are stable across runs.
func TopK(candidates []domain.Chunk, query []float32, k int, filter domain.AccessFilter) []driven.VectorHit {
	if k <= 0 || filter.Unsatisfiable() {
		return nil
	}

	hits := make([]driven.VectorHit, 0, len(candidates))
	for _, chunk := range candidates {
		if !filter.Matches(chunk.Meta.Department) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Chunk:      chunk,
			Similarity: Clamp01(Cosine(query, chunk.Embedding)),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
