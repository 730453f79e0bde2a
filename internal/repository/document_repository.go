package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"docsearch/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List() ([]model.Document, error) {
	var list []model.Document
	if err := r.db.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

// UpdateEmbeddingStatus moves a document through the ingestion state machine.
// totalChunks < 0 leaves the stored chunk count untouched.
func (r *DocumentRepository) UpdateEmbeddingStatus(id, status string, totalChunks int) error {
	updates := map[string]interface{}{"embedding_status": status}
	if totalChunks >= 0 {
		updates["total_chunks"] = totalChunks
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document status failed: %w", err)
	}
	return nil
}

// ListStuckProcessing returns documents left in processing longer than the
// given cutoff, for the reconcile repair operation.
func (r *DocumentRepository) ListStuckProcessing(olderThan time.Time) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.
		Where("embedding_status = ?", model.StatusProcessing).
		Where("updated_at < ?", olderThan).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list stuck documents failed: %w", err)
	}
	return list, nil
}

func (r *DocumentRepository) SoftDelete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
