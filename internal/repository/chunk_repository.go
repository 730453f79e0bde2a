package repository

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"docsearch/internal/model"
)

// DefaultBatchSize bounds one insert statement; the storage backend has
// payload-size limits on large embedding rows.
const DefaultBatchSize = 10

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch inserts chunks in fixed-size batches and returns how many rows
// were committed. A failing batch aborts the remainder; batches already
// committed stay committed so partial ingestion progress is preserved.
func (r *ChunkRepository) CreateBatch(chunks []model.Chunk, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	saved := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		if err := r.db.Create(&batch).Error; err != nil {
			return saved, fmt.Errorf("create chunk batch failed: %w", err)
		}
		saved += len(batch)
	}
	return saved, nil
}

// DeleteByDocumentID removes all chunks of a document. Idempotent.
func (r *ChunkRepository) DeleteByDocumentID(documentID string) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) CountByDocumentID(documentID string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return count, nil
}

func (r *ChunkRepository) ListByDocumentID(documentID string) ([]model.Chunk, error) {
	var chunks []model.Chunk
	if err := r.db.Where("document_id = ?", documentID).Order("chunk_index ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by document failed: %w", err)
	}
	return chunks, nil
}

// SearchChunk is a chunk joined with the lightweight document metadata the
// query path needs.
type SearchChunk struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Department    string `json:"department"`
	Content       string `json:"content"`
	Embedding     string `json:"-"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *SearchChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// ListForSearch returns chunks of completed, non-deleted documents, optionally
// scoped to a department.
func (r *ChunkRepository) ListForSearch(department string, limit int) ([]SearchChunk, error) {
	q := r.db.Table("chunks").
		Select("chunks.document_id, documents.original_name AS document_title, documents.department, chunks.content, chunks.embedding").
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("documents.embedding_status = ?", model.StatusCompleted).
		Where("documents.deleted_at IS NULL")
	if department != "" {
		q = q.Where("documents.department = ?", department)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []SearchChunk
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list chunks for search failed: %w", err)
	}
	return rows, nil
}
