package model

import (
	"time"

	"gorm.io/gorm"
)

// EmbeddingStatus tracks where a document is in the ingestion pipeline.
// Only completed documents are eligible for search.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Document struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	StoragePath     string         `gorm:"size:512;not null" json:"storage_path"`
	OriginalName    string         `gorm:"size:256;not null" json:"original_name"`
	Department      string         `gorm:"size:128;index" json:"department"`
	EmbeddingStatus string         `gorm:"size:16;not null;default:pending;index" json:"embedding_status"`
	TotalChunks     int            `gorm:"not null;default:0" json:"total_chunks"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
