package model

import (
	"encoding/json"
	"time"
)

// MaxChunkContent caps stored chunk text; longer chunks are truncated on save.
const MaxChunkContent = 5000

// Chunk stores one segment of a document's extracted text together with its
// embedding. Embedding is stored as a JSON array of float32 for portability.
// Chunks are immutable after creation; reprocessing a document replaces them.
type Chunk struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DocumentID  string    `gorm:"size:36;not null;index" json:"document_id"`
	ChunkIndex  int       `gorm:"not null" json:"chunk_index"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Embedding   string    `gorm:"type:mediumtext" json:"-"` // JSON array of float32
	ChunkLength int       `gorm:"not null" json:"chunk_length"`
	TotalChunks int       `gorm:"not null" json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *Chunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *Chunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
