package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docsearch/internal/app"
	"docsearch/internal/transport/http/response"
)

type SearchHandler struct {
	searchService *app.SearchService
}

type SearchRequest struct {
	Query      string `json:"query" binding:"required"`
	MaxResults int    `json:"max_results"`
	Department string `json:"department"`
}

func NewSearchHandler(searchService *app.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.Query, req.MaxResults, req.Department)
	if err != nil {
		if errors.Is(err, app.ErrInvalidQuery) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search failed")
		}
		return
	}

	response.OK(c, gin.H{
		"results": results,
		"count":   len(results),
	})
}
