package app

import (
	"context"
	"log"
	"strings"
	"sync"

	"docsearch/internal/search"
)

const (
	defaultMaxResults = 5
	maxMaxResults     = 10

	// Display truncation for returned chunk text.
	maxResultTextRunes = 300
)

// SearchOptions tunes the query path.
type SearchOptions struct {
	MaxCandidates int
	Weights       search.Weights
}

// SearchResult is one final-ranked hit as exposed to callers.
type SearchResult struct {
	DocumentTitle string  `json:"document_title"`
	Department    string  `json:"department"`
	ChunkText     string  `json:"chunk_text"`
	Score         float64 `json:"score"`
}

// SearchService answers natural-language queries over the completed chunk
// corpus by fusing a BM25 keyword arm with a cosine-similarity vector arm.
type SearchService struct {
	chunkStore ChunkStore
	embedder   Embedder
	cache      ResultCache // optional
	opts       SearchOptions
}

func NewSearchService(chunkStore ChunkStore, embedder Embedder, cache ResultCache, opts SearchOptions) *SearchService {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 1000
	}
	zero := search.Weights{}
	if opts.Weights == zero {
		opts.Weights = search.DefaultWeights()
	}
	return &SearchService{
		chunkStore: chunkStore,
		embedder:   embedder,
		cache:      cache,
		opts:       opts,
	}
}

// Search runs both retrieval arms concurrently and returns the fused ranking.
// When the dense arm fails (embedding service down), it degrades to the
// keyword-only ranking instead of returning an error. An empty result list is
// a valid answer, not an error.
func (s *SearchService) Search(ctx context.Context, query string, maxResults int, department string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidQuery
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxMaxResults {
		maxResults = maxMaxResults
	}

	if s.cache != nil {
		var cached []SearchResult
		hit, err := s.cache.Get(ctx, query, department, maxResults, &cached)
		if err != nil {
			log.Printf("search cache get failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.chunkStore.ListForSearch(department, s.opts.MaxCandidates)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []SearchResult{}, nil
	}

	candidates := make([]search.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = search.Candidate{
			DocumentID:    row.DocumentID,
			DocumentTitle: row.DocumentTitle,
			Department:    row.Department,
			Text:          row.Content,
			Vector:        row.EmbeddingVector(),
		}
	}

	// The two arms share the candidate slice read-only and have no data
	// dependency on each other.
	var (
		wg            sync.WaitGroup
		keywordRanked []search.Scored
		vectorRanked  []search.Scored
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		keywordRanked = search.KeywordSearch(query, candidates, 0)
	}()
	go func() {
		defer wg.Done()
		queryVec, err := s.embedder.Embed(ctx, query)
		if err != nil {
			log.Printf("search: dense arm unavailable, keyword-only fallback: %v", err)
			return
		}
		vectorRanked = search.VectorSearch(queryVec, candidates, 0)
	}()
	wg.Wait()

	fused := search.Fuse(vectorRanked, keywordRanked, s.opts.Weights, maxResults)

	results := make([]SearchResult, len(fused))
	for i, f := range fused {
		results[i] = SearchResult{
			DocumentTitle: f.Candidate.DocumentTitle,
			Department:    f.Candidate.Department,
			ChunkText:     truncateRunes(f.Candidate.Text, maxResultTextRunes),
			Score:         f.Score,
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, department, maxResults, results); err != nil {
			log.Printf("search cache set failed: %v", err)
		}
	}
	return results, nil
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
