package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"docsearch/internal/ai"
	"docsearch/internal/model"
	"docsearch/internal/pkg/pdfextract"
	"docsearch/internal/pkg/textsplit"
)

// IngestOptions tunes the ingestion pipeline.
type IngestOptions struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	Workers      int // concurrent embedding calls
	EmbedRetries int // retries per chunk after the first attempt
}

func (o IngestOptions) withDefaults() IngestOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = textsplit.DefaultChunkSize
	}
	if o.ChunkOverlap < 0 {
		o.ChunkOverlap = textsplit.DefaultChunkOverlap
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.EmbedRetries < 0 {
		o.EmbedRetries = 2
	}
	return o
}

// ProcessResult is always returned, never a raised error: the pipeline
// resolves every run to a status plus a chunk count.
type ProcessResult struct {
	Success         bool   `json:"success"`
	ChunksProcessed int    `json:"chunks_processed"`
	Error           string `json:"error,omitempty"`
}

// IngestService owns the document processing lifecycle:
// pending -> processing -> completed | failed.
type IngestService struct {
	docStore   DocumentStore
	chunkStore ChunkStore
	embedder   Embedder
	blobs      BlobStore
	extractor  TextExtractor
	locker     DocLocker // optional cross-process lock
	opts       IngestOptions

	inflight keyedMutex
}

func NewIngestService(
	docStore DocumentStore,
	chunkStore ChunkStore,
	embedder Embedder,
	blobs BlobStore,
	extractor TextExtractor,
	locker DocLocker,
	opts IngestOptions,
) *IngestService {
	return &IngestService{
		docStore:   docStore,
		chunkStore: chunkStore,
		embedder:   embedder,
		blobs:      blobs,
		extractor:  extractor,
		locker:     locker,
		opts:       opts.withDefaults(),
	}
}

// ProcessDocument runs the full ingestion pipeline for one document:
// fetch bytes, extract text, chunk, embed, replace stored chunks.
//
// Partial-failure policy: a run that persists at least one chunk completes
// with total_chunks set to the persisted count, even if later chunks failed.
// Only a run that persists zero chunks marks the document failed. Existing
// chunks are always deleted first, so reprocessing never leaves stale rows.
func (s *IngestService) ProcessDocument(ctx context.Context, documentID, storagePath string) ProcessResult {
	if documentID == "" || storagePath == "" {
		return ProcessResult{Error: "document id and storage path are required"}
	}

	if !s.inflight.tryLock(documentID) {
		return ProcessResult{Error: ErrIngestInProgress.Error()}
	}
	defer s.inflight.unlock(documentID)

	if s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, documentID)
		if err != nil {
			log.Printf("ingest %s: acquire lock failed: %v", documentID, err)
		} else if !ok {
			return ProcessResult{Error: ErrIngestInProgress.Error()}
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), documentID, token); err != nil {
					log.Printf("ingest %s: release lock failed: %v", documentID, err)
				}
			}()
		}
	}

	if err := s.docStore.UpdateEmbeddingStatus(documentID, model.StatusProcessing, -1); err != nil {
		return ProcessResult{Error: err.Error()}
	}

	persisted, err := s.run(ctx, documentID, storagePath)
	if persisted > 0 {
		// A run with any persisted chunks completes; total_chunks records
		// what actually made it in.
		if err != nil {
			log.Printf("ingest %s: completing with %d chunks after error: %v", documentID, persisted, err)
		}
		if uerr := s.docStore.UpdateEmbeddingStatus(documentID, model.StatusCompleted, persisted); uerr != nil {
			log.Printf("ingest %s: mark completed failed: %v", documentID, uerr)
		}
		return ProcessResult{Success: true, ChunksProcessed: persisted}
	}

	if uerr := s.docStore.UpdateEmbeddingStatus(documentID, model.StatusFailed, -1); uerr != nil {
		log.Printf("ingest %s: mark failed failed: %v", documentID, uerr)
	}
	msg := "no chunks could be persisted"
	if err != nil {
		msg = err.Error()
	}
	log.Printf("ingest %s: failed: %s", documentID, msg)
	return ProcessResult{Error: msg}
}

// run executes the pipeline and reports how many chunks were persisted before
// any error.
func (s *IngestService) run(ctx context.Context, documentID, storagePath string) (int, error) {
	pdfBytes, err := s.blobs.GetDocumentBytes(ctx, storagePath)
	if err != nil {
		return 0, err
	}
	if len(pdfBytes) == 0 {
		return 0, errors.New("document payload is empty")
	}

	text, err := s.extractor.Extract(pdfBytes)
	if err != nil {
		return 0, err
	}

	splitter := textsplit.NewSplitter(s.opts.ChunkSize, s.opts.ChunkOverlap)
	pieces := splitter.Split(text)
	if len(pieces) == 0 {
		return 0, pdfextract.ErrNoText
	}
	log.Printf("ingest %s: %d chunks from %d chars", documentID, len(pieces), len(text))

	// Destructive-then-additive: existing chunks go before the new run's
	// rows arrive, so retries never duplicate or leave stale rows.
	if err := s.chunkStore.DeleteByDocumentID(documentID); err != nil {
		return 0, err
	}

	vectors := s.embedAll(ctx, documentID, pieces)

	chunks := make([]model.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		if vectors[i] == nil {
			continue
		}
		content := piece
		if runes := []rune(content); len(runes) > model.MaxChunkContent {
			content = string(runes[:model.MaxChunkContent])
		}
		chunk := model.Chunk{
			DocumentID:  documentID,
			ChunkIndex:  i,
			Content:     content,
			ChunkLength: len([]rune(piece)),
			TotalChunks: len(pieces),
		}
		chunk.SetEmbedding(vectors[i])
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 {
		return 0, errors.New("embedding failed for every chunk")
	}

	return s.chunkStore.CreateBatch(chunks, s.opts.BatchSize)
}

// embedAll embeds every piece with bounded concurrency. The returned slice is
// index-aligned with pieces; a nil vector marks a chunk whose embedding failed
// after retries (skipped, not fatal).
func (s *IngestService) embedAll(ctx context.Context, documentID string, pieces []string) [][]float32 {
	vectors := make([][]float32, len(pieces))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := s.embedWithRetry(ctx, pieces[i])
				if err != nil {
					log.Printf("ingest %s: chunk %d embedding skipped: %v", documentID, i, err)
					continue
				}
				vectors[i] = vec
			}
		}()
	}

	for i := range pieces {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return vectors
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return vectors
}

func (s *IngestService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= s.opts.EmbedRetries; attempt++ {
		vec, err := s.embedder.Embed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		// A rejected input will not succeed on retry.
		if errors.Is(err, ai.ErrInputRejected) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Reconcile repairs documents stuck in processing beyond olderThan: completed
// when chunks exist (total_chunks set to the actual count), failed otherwise.
// Idempotent; meant to be invoked on demand, not as a watchdog.
func (s *IngestService) Reconcile(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	stuck, err := s.docStore.ListStuckProcessing(cutoff)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, doc := range stuck {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		count, err := s.chunkStore.CountByDocumentID(doc.ID)
		if err != nil {
			log.Printf("reconcile %s: count chunks failed: %v", doc.ID, err)
			continue
		}
		status := model.StatusFailed
		totalChunks := -1
		if count > 0 {
			status = model.StatusCompleted
			totalChunks = int(count)
		}
		if err := s.docStore.UpdateEmbeddingStatus(doc.ID, status, totalChunks); err != nil {
			log.Printf("reconcile %s: update status failed: %v", doc.ID, err)
			continue
		}
		log.Printf("reconcile %s: processing -> %s (%d chunks)", doc.ID, status, count)
		repaired++
	}
	return repaired, nil
}

// keyedMutex serializes ingestion per document within this process.
type keyedMutex struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func (k *keyedMutex) tryLock(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.held == nil {
		k.held = make(map[string]struct{})
	}
	if _, ok := k.held[key]; ok {
		return false
	}
	k.held[key] = struct{}{}
	return true
}

func (k *keyedMutex) unlock(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.held, key)
}
