package search

import (
	"math"
	"sort"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75

	// Raw BM25 scores are squashed into [0,1] by dividing by this constant.
	// The value is kept as-is for ranking parity with earlier deployments.
	bm25NormDivisor = 10.0
)

// KeywordSearch computes Okapi BM25 scores for the query over the candidate
// corpus and returns matching candidates ranked by descending score. Chunks
// containing none of the query terms are dropped. The corpus statistics
// (document frequency, average length) are recomputed per call.
func KeywordSearch(query string, candidates []Candidate, limit int) []Scored {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || len(candidates) == 0 {
		return nil
	}

	docTokens := make([][]string, len(candidates))
	totalLen := 0
	for i, c := range candidates {
		docTokens[i] = Tokenize(c.Text)
		totalLen += len(docTokens[i])
	}
	n := float64(len(candidates))
	avgDocLen := float64(totalLen) / n
	if avgDocLen == 0 {
		return nil
	}

	// Document frequency per query term.
	df := make(map[string]float64, len(queryTokens))
	for i := range candidates {
		seen := make(map[string]struct{}, len(docTokens[i]))
		for _, tok := range docTokens[i] {
			seen[tok] = struct{}{}
		}
		for _, term := range queryTokens {
			if _, ok := seen[term]; ok {
				df[term]++
			}
		}
	}

	results := make([]Scored, 0, len(candidates))
	for i, c := range candidates {
		tf := make(map[string]float64, len(docTokens[i]))
		for _, tok := range docTokens[i] {
			tf[tok]++
		}

		docLen := float64(len(docTokens[i]))
		score := 0.0
		for _, term := range queryTokens {
			freq := tf[term]
			if freq == 0 {
				continue
			}
			// Smoothed IDF: the +1 keeps it positive for terms present in
			// more than half the corpus, so a higher term frequency can
			// never lower a chunk's score.
			idf := math.Log((n-df[term]+0.5)/(df[term]+0.5) + 1)
			score += idf * (freq * (bm25K1 + 1)) /
				(freq + bm25K1*(1-bm25B+bm25B*docLen/avgDocLen))
		}
		if score == 0 {
			continue
		}
		results = append(results, Scored{
			Candidate:  c,
			Similarity: math.Min(score/bm25NormDivisor, 1.0),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
