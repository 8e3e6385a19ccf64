package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
	"github.com/noah-isme/assignment-helper-api/internal/service"
	"github.com/noah-isme/assignment-helper-api/pkg/response"
)

type healthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// HealthHandler serves liveness and the service banner.
type HealthHandler struct {
	service healthService
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(svc healthService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// Health godoc
// @Summary Service health
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Check(c.Request.Context()))
}

// Root describes the API.
func (h *HealthHandler) Root(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Academic Assignment Helper API",
		"docs":    "/docs",
		"health":  "/health",
		"version": service.Version,
	})
}
