package app

import (
	"context"
	"time"

	"docsearch/internal/model"
	"docsearch/internal/repository"
)

// DocumentStore is the document table surface the services need.
type DocumentStore interface {
	GetByID(id string) (*model.Document, error)
	UpdateEmbeddingStatus(id, status string, totalChunks int) error
	ListStuckProcessing(olderThan time.Time) ([]model.Document, error)
}

// ChunkStore persists and serves chunk rows.
type ChunkStore interface {
	DeleteByDocumentID(documentID string) error
	CreateBatch(chunks []model.Chunk, batchSize int) (int, error)
	CountByDocumentID(documentID string) (int64, error)
	ListForSearch(department string, limit int) ([]repository.SearchChunk, error)
}

// TextExtractor pulls raw text out of a document byte stream.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// BlobStore hands out a document's raw bytes by storage path.
type BlobStore interface {
	GetDocumentBytes(ctx context.Context, storagePath string) ([]byte, error)
}

// DocLocker is an advisory cross-process lock per document.
type DocLocker interface {
	Acquire(ctx context.Context, documentID string) (token string, ok bool, err error)
	Release(ctx context.Context, documentID, token string) error
}

// ResultCache keeps recent search responses.
type ResultCache interface {
	Get(ctx context.Context, query, department string, limit int, dest interface{}) (bool, error)
	Set(ctx context.Context, query, department string, limit int, results interface{}) error
}
