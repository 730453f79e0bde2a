package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuseDeduplicatesAcrossArms(t *testing.T) {
	shared := Candidate{DocumentID: "doc1", Text: "동일한 청크 본문"}
	vector := []Scored{{Candidate: shared, Similarity: 0.9}}
	keyword := []Scored{{Candidate: shared, Similarity: 0.5}}

	results := Fuse(vector, keyword, DefaultWeights(), 10)
	require.Len(t, results, 1)
	assert.Equal(t, 0.9, results[0].VectorScore)
	assert.Equal(t, 0.5, results[0].KeywordScore)
}

func TestFuseDistinguishesByLeadingText(t *testing.T) {
	a := Candidate{DocumentID: "doc1", Text: "첫번째 청크"}
	b := Candidate{DocumentID: "doc1", Text: "두번째 청크"}
	results := Fuse(
		[]Scored{{Candidate: a, Similarity: 0.9}},
		[]Scored{{Candidate: b, Similarity: 0.8}},
		DefaultWeights(), 10,
	)
	assert.Len(t, results, 2)
}

func TestFuseSameLongPrefixCollapses(t *testing.T) {
	// The identity key only covers the first 100 runes, so two chunks that
	// agree on that prefix count as one candidate.
	prefix := strings.Repeat("가", 100)
	a := Candidate{DocumentID: "doc1", Text: prefix + "뒤쪽 내용 A"}
	b := Candidate{DocumentID: "doc1", Text: prefix + "뒤쪽 내용 B"}
	results := Fuse(
		[]Scored{{Candidate: a, Similarity: 0.9}},
		[]Scored{{Candidate: b, Similarity: 0.8}},
		DefaultWeights(), 10,
	)
	assert.Len(t, results, 1)
}

func TestFuseBlendsScoresAndRRF(t *testing.T) {
	w := DefaultWeights()
	c := Candidate{DocumentID: "doc1", Text: "본문"}
	results := Fuse(
		[]Scored{{Candidate: c, Similarity: 0.5}},
		nil,
		w, 10,
	)
	require.Len(t, results, 1)

	want := w.Vector*0.5 + w.VectorRRF*(1.0/61.0) + w.KeywordRRF*(1.0/(60.0+999.0))
	assert.InDelta(t, want, results[0].Score, 1e-9)
}

func TestFuseOrdersByFinalScore(t *testing.T) {
	strong := Candidate{DocumentID: "strong", Text: "강한 후보"}
	weak := Candidate{DocumentID: "weak", Text: "약한 후보"}
	vector := []Scored{
		{Candidate: strong, Similarity: 0.95},
		{Candidate: weak, Similarity: 0.3},
	}
	keyword := []Scored{
		{Candidate: strong, Similarity: 0.7},
	}

	results := Fuse(vector, keyword, DefaultWeights(), 10)
	require.Len(t, results, 2)
	assert.Equal(t, "strong", results[0].Candidate.DocumentID)
}

func TestFuseTruncatesToLimit(t *testing.T) {
	var vector []Scored
	for i := 0; i < 8; i++ {
		vector = append(vector, Scored{
			Candidate:  Candidate{DocumentID: string(rune('a' + i)), Text: "본문"},
			Similarity: 0.5,
		})
	}
	results := Fuse(vector, nil, DefaultWeights(), 3)
	assert.Len(t, results, 3)
}

func TestFuseKeywordOnly(t *testing.T) {
	keyword := []Scored{
		{Candidate: Candidate{DocumentID: "a", Text: "키워드 전용"}, Similarity: 0.6},
	}
	results := Fuse(nil, keyword, DefaultWeights(), 5)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].VectorScore)
	assert.Equal(t, 0.6, results[0].KeywordScore)
}
