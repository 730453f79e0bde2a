package search

import "sort"

const (
	// rrfK is the standard reciprocal-rank fusion constant.
	rrfK = 60
	// unrankedRank stands in for items absent from one arm's list; its RRF
	// contribution is negligible.
	unrankedRank = 999

	fingerprintRunes = 100
)

// Weights controls the blend of raw arm scores and RRF terms in the final
// fused score.
type Weights struct {
	Vector     float64
	Keyword    float64
	VectorRRF  float64
	KeywordRRF float64
}

func DefaultWeights() Weights {
	return Weights{Vector: 0.8, Keyword: 0.2, VectorRRF: 0.3, KeywordRRF: 0.1}
}

// Result is one fused, final-ranked search hit.
type Result struct {
	Candidate    Candidate
	VectorScore  float64
	KeywordScore float64
	Score        float64
}

// Fuse merges the dense and sparse result lists. Candidates appearing in both
// arms are deduplicated by (documentID, leading chunk text) fingerprint; each
// candidate's final score blends its raw similarities with reciprocal-rank
// terms from both lists. Ranks are 1-based within each arm.
func Fuse(vector, keyword []Scored, w Weights, limit int) []Result {
	type entry struct {
		candidate    Candidate
		vectorScore  float64
		keywordScore float64
		vectorRank   int
		keywordRank  int
	}

	merged := make(map[string]*entry, len(vector)+len(keyword))
	order := make([]string, 0, len(vector)+len(keyword))

	for i, s := range vector {
		fp := fingerprint(s.Candidate)
		e, ok := merged[fp]
		if !ok {
			e = &entry{candidate: s.Candidate, vectorRank: unrankedRank, keywordRank: unrankedRank}
			merged[fp] = e
			order = append(order, fp)
		}
		e.vectorScore = s.Similarity
		e.vectorRank = i + 1
	}
	for i, s := range keyword {
		fp := fingerprint(s.Candidate)
		e, ok := merged[fp]
		if !ok {
			e = &entry{candidate: s.Candidate, vectorRank: unrankedRank, keywordRank: unrankedRank}
			merged[fp] = e
			order = append(order, fp)
		}
		e.keywordScore = s.Similarity
		e.keywordRank = i + 1
	}

	results := make([]Result, 0, len(order))
	for _, fp := range order {
		e := merged[fp]
		score := w.Vector*e.vectorScore +
			w.Keyword*e.keywordScore +
			w.VectorRRF*rrf(e.vectorRank) +
			w.KeywordRRF*rrf(e.keywordRank)
		results = append(results, Result{
			Candidate:    e.candidate,
			VectorScore:  e.vectorScore,
			KeywordScore: e.keywordScore,
			Score:        score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func rrf(rank int) float64 {
	return 1.0 / float64(rrfK+rank)
}

// fingerprint identifies a chunk across the two arms by its document and the
// first 100 runes of its text. A pragmatic key, not a guaranteed-unique one.
func fingerprint(c Candidate) string {
	text := c.Text
	runes := []rune(text)
	if len(runes) > fingerprintRunes {
		text = string(runes[:fingerprintRunes])
	}
	return c.DocumentID + "|" + text
}
