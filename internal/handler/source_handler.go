package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/models"
	"github.com/noah-isme/assignment-helper-api/internal/service"
	appErrors "github.com/noah-isme/assignment-helper-api/pkg/errors"
	"github.com/noah-isme/assignment-helper-api/pkg/response"
)

type sourceService interface {
	Search(ctx context.Context, query string, topK int) service.SourceResult
}

// SourceHandler exposes catalogue search.
type SourceHandler struct {
	service sourceService
}

// NewSourceHandler constructs a SourceHandler.
func NewSourceHandler(svc sourceService) *SourceHandler {
	return &SourceHandler{service: svc}
}

// Search godoc
// @Summary Search academic sources
// @Tags Sources
// @Produce json
// @Security BearerAuth
// @Param query query string true "Search text"
// @Param top_k query int false "Number of results" default(5)
// @Success 200 {object} dto.SourceSearchResponse
// @Failure 400 {object} response.ErrorBody
// @Router /sources [get]
func (h *SourceHandler) Search(c *gin.Context) {
	var q dto.SourceSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.WrapAs(err, appErrors.ErrValidation, "query is required"))
		return
	}

	res := h.service.Search(c.Request.Context(), q.Query, q.TopK)
	response.JSON(c, http.StatusOK, dto.SourceSearchResponse{
		Query:    q.Query,
		Sources:  res.Sources,
		Degraded: res.Outcome == models.OutcomeDegraded,
	})
}
