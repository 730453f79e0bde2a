// Package search implements the two retrieval arms (BM25 keyword scoring and
// cosine vector similarity) and the reciprocal-rank fusion that merges them.
package search

// Candidate is one searchable chunk joined with lightweight document metadata.
type Candidate struct {
	DocumentID    string
	DocumentTitle string
	Department    string
	Text          string
	Vector        []float32
}

// Scored pairs a candidate with one arm's similarity, normalized into [0,1].
type Scored struct {
	Candidate  Candidate
	Similarity float64
}
