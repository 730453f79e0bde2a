package search

import (
	"math"
	"sort"
)

// SimilarityFloor is the minimum cosine similarity a chunk must reach to be
// considered a dense-arm candidate.
const SimilarityFloor = 0.2

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either norm is zero
// or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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

// VectorSearch ranks candidates by cosine similarity against the query
// embedding. Vectors whose dimension does not match the query embedding are
// discarded, as are results below the similarity floor.
func VectorSearch(queryVec []float32, candidates []Candidate, limit int) []Scored {
	if len(queryVec) == 0 || len(candidates) == 0 {
		return nil
	}

	results := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(queryVec) {
			continue
		}
		sim := CosineSimilarity(queryVec, c.Vector)
		if sim < SimilarityFloor {
			continue
		}
		results = append(results, Scored{Candidate: c, Similarity: sim})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
