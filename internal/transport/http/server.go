package http

import (
	"github.com/gin-gonic/gin"

	"docsearch/internal/bootstrap"
	"docsearch/internal/repository"
	"docsearch/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	docRepo := repository.NewDocumentRepository(app.MySQL)
	chunkRepo := repository.NewChunkRepository(app.MySQL)
	documentHandler := handler.NewDocumentHandler(docRepo, chunkRepo, app.IngestService, app.IngestPublisher)
	searchHandler := handler.NewSearchHandler(app.SearchService)

	v1 := router.Group("/api/v1")

	docGroup := v1.Group("/documents")
	docGroup.POST("", documentHandler.Register)
	docGroup.GET("", documentHandler.List)
	docGroup.GET("/:id/chunks", documentHandler.Chunks)
	docGroup.DELETE("/:id", documentHandler.Delete)
	docGroup.POST("/:id/process", documentHandler.Process)
	docGroup.POST("/:id/process-async", documentHandler.ProcessAsync)
	docGroup.POST("/reconcile", documentHandler.Reconcile)

	v1.POST("/search", searchHandler.Search)

	return router
}
