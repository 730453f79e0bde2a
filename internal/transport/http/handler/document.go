package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docsearch/internal/app"
	"docsearch/internal/model"
	"docsearch/internal/platform/rabbitmq"
	"docsearch/internal/repository"
	"docsearch/internal/transport/http/response"
)

const defaultReconcileAgeMinutes = 30

type DocumentHandler struct {
	docRepo       *repository.DocumentRepository
	chunkRepo     *repository.ChunkRepository
	ingestService *app.IngestService
	publisher     *rabbitmq.IngestPublisher
}

type RegisterDocumentRequest struct {
	StoragePath  string `json:"storage_path" binding:"required"`
	OriginalName string `json:"original_name" binding:"required,max=256"`
	Department   string `json:"department" binding:"max=128"`
}

type ReconcileRequest struct {
	OlderThanMinutes int `json:"older_than_minutes"`
}

func NewDocumentHandler(
	docRepo *repository.DocumentRepository,
	chunkRepo *repository.ChunkRepository,
	ingestService *app.IngestService,
	publisher *rabbitmq.IngestPublisher,
) *DocumentHandler {
	return &DocumentHandler{
		docRepo:       docRepo,
		chunkRepo:     chunkRepo,
		ingestService: ingestService,
		publisher:     publisher,
	}
}

// Register records a document whose payload the upload collaborator has
// already stored. Processing is a separate step.
func (h *DocumentHandler) Register(c *gin.Context) {
	var req RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc := &model.Document{
		ID:              uuid.NewString(),
		StoragePath:     strings.TrimSpace(req.StoragePath),
		OriginalName:    strings.TrimSpace(req.OriginalName),
		Department:      strings.TrimSpace(req.Department),
		EmbeddingStatus: model.StatusPending,
	}
	if err := h.docRepo.Create(doc); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create document failed")
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docRepo.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

// Process runs the ingestion pipeline synchronously and reports the outcome.
// Pipeline failures come back as a result payload, not an HTTP error.
func (h *DocumentHandler) Process(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	result := h.ingestService.ProcessDocument(c.Request.Context(), doc.ID, doc.StoragePath)
	if !result.Success && result.Error == app.ErrIngestInProgress.Error() {
		response.Error(c, http.StatusConflict, response.CodeIngestConflict, result.Error)
		return
	}
	response.OK(c, result)
}

// ProcessAsync queues the document for the ingest worker.
func (h *DocumentHandler) ProcessAsync(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	job := rabbitmq.IngestJob{DocumentID: doc.ID, StoragePath: doc.StoragePath}
	if err := h.publisher.Publish(c.Request.Context(), job); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "queue ingest job failed")
		return
	}
	response.OK(c, gin.H{"queued_document_id": doc.ID})
}

// Chunks lists a document's stored chunks in index order, without embeddings.
func (h *DocumentHandler) Chunks(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	chunks, err := h.chunkRepo.ListByDocumentID(doc.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chunks failed")
		return
	}
	response.OK(c, gin.H{"document_id": doc.ID, "chunks": chunks, "count": len(chunks)})
}

// Delete soft-deletes the document and removes its chunks.
func (h *DocumentHandler) Delete(c *gin.Context) {
	doc, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.chunkRepo.DeleteByDocumentID(doc.ID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete chunks failed")
		return
	}
	if err := h.docRepo.SoftDelete(doc.ID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted_document_id": doc.ID})
}

// Reconcile repairs documents stuck in processing.
func (h *DocumentHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	if req.OlderThanMinutes <= 0 {
		req.OlderThanMinutes = defaultReconcileAgeMinutes
	}

	repaired, err := h.ingestService.Reconcile(c.Request.Context(), time.Duration(req.OlderThanMinutes)*time.Minute)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reconcile failed")
		return
	}
	response.OK(c, gin.H{"repaired": repaired})
}

func (h *DocumentHandler) lookup(c *gin.Context) (*model.Document, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return nil, false
	}
	doc, err := h.docRepo.GetByID(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		return nil, false
	}
	if doc == nil {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		return nil, false
	}
	return doc, true
}
