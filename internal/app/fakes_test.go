package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"docsearch/internal/ai"
	"docsearch/internal/model"
	"docsearch/internal/repository"
)

type fakeDocStore struct {
	mu    sync.Mutex
	docs  map[string]*model.Document
	stuck []model.Document
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]*model.Document)}
}

func (f *fakeDocStore) GetByID(id string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id], nil
}

func (f *fakeDocStore) UpdateEmbeddingStatus(id, status string, totalChunks int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	if !ok {
		doc = &model.Document{ID: id}
		f.docs[id] = doc
	}
	doc.EmbeddingStatus = status
	if totalChunks >= 0 {
		doc.TotalChunks = totalChunks
	}
	return nil
}

func (f *fakeDocStore) ListStuckProcessing(time.Time) ([]model.Document, error) {
	return f.stuck, nil
}

type fakeChunkStore struct {
	mu          sync.Mutex
	chunks      map[string][]model.Chunk
	failAtBatch int // 1-based batch ordinal that fails; 0 = never
	rows        []repository.SearchChunk
	listErr     error
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{chunks: make(map[string][]model.Chunk)}
}

func (f *fakeChunkStore) CreateBatch(chunks []model.Chunk, batchSize int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := 0
	batchNum := 0
	for start := 0; start < len(chunks); start += batchSize {
		batchNum++
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if f.failAtBatch > 0 && batchNum == f.failAtBatch {
			return saved, fmt.Errorf("create chunk batch failed: simulated storage error")
		}
		for _, c := range chunks[start:end] {
			f.chunks[c.DocumentID] = append(f.chunks[c.DocumentID], c)
		}
		saved += end - start
	}
	return saved, nil
}

func (f *fakeChunkStore) DeleteByDocumentID(documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chunks, documentID)
	return nil
}

func (f *fakeChunkStore) CountByDocumentID(documentID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.chunks[documentID])), nil
}

func (f *fakeChunkStore) ListForSearch(string, int) ([]repository.SearchChunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

func (f *fakeChunkStore) indexes(documentID string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, c := range f.chunks[documentID] {
		out = append(out, c.ChunkIndex)
	}
	return out
}

type fakeEmbedder struct {
	dim            int
	err            error    // fail every call
	failSubstrings []string // fail calls whose text contains any of these
	vecFor         func(text string) []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, sub := range f.failSubstrings {
		if strings.Contains(text, sub) {
			return nil, fmt.Errorf("%w: simulated outage", ai.ErrServiceUnavailable)
		}
	}
	if f.vecFor != nil {
		return f.vecFor(text), nil
	}
	vec := make([]float32, f.Dimension())
	vec[0] = 1
	return vec, nil
}

func (f *fakeEmbedder) Dimension() int {
	if f.dim > 0 {
		return f.dim
	}
	return 4
}

type fakeBlob struct {
	data []byte
	err  error
}

func (f *fakeBlob) GetDocumentBytes(context.Context, string) ([]byte, error) {
	return f.data, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract([]byte) (string, error) {
	return f.text, f.err
}

type fakeLocker struct {
	denied   bool
	acquired int
	released int
}

func (f *fakeLocker) Acquire(context.Context, string) (string, bool, error) {
	if f.denied {
		return "", false, nil
	}
	f.acquired++
	return "token", true, nil
}

func (f *fakeLocker) Release(context.Context, string, string) error {
	f.released++
	return nil
}
