package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityBounds(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-4, 5, -6}
	sim := CosineSimilarity(a, b)
	assert.GreaterOrEqual(t, sim, -1.0)
	assert.LessOrEqual(t, sim, 1.0)
}

func TestCosineSimilaritySelf(t *testing.T) {
	a := []float32{0.3, -0.7, 0.12, 4}
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-6)
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float32{1, 2}
	b := []float32{-1, -2}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestCosineSimilarityDimensionMismatch(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestVectorSearchDiscardsMismatchedDimensions(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := []Candidate{
		{DocumentID: "ok", Vector: []float32{1, 0.1, 0}},
		{DocumentID: "wrong-dim", Vector: []float32{1, 0}},
	}
	results := VectorSearch(query, candidates, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Candidate.DocumentID)
}

func TestVectorSearchAppliesSimilarityFloor(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{DocumentID: "close", Vector: []float32{1, 0.2}},
		{DocumentID: "orthogonal", Vector: []float32{0, 1}},
		{DocumentID: "opposite", Vector: []float32{-1, 0}},
	}
	results := VectorSearch(query, candidates, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].Candidate.DocumentID)
}

func TestVectorSearchRanksDescending(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{DocumentID: "mid", Vector: []float32{1, 1}},
		{DocumentID: "best", Vector: []float32{1, 0.01}},
	}
	results := VectorSearch(query, candidates, 0)
	require.Len(t, results, 2)
	assert.Equal(t, "best", results[0].Candidate.DocumentID)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}
