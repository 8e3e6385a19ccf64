package dto

import "github.com/noah-isme/assignment-helper-api/internal/models"

// SourceSearchQuery binds GET /sources parameters.
type SourceSearchQuery struct {
	Query string `form:"query" binding:"required"`
	TopK  int    `form:"top_k"`
}

// SourceSearchResponse lists matching sources.
type SourceSearchResponse struct {
	Query    string                   `json:"query"`
	Sources  []models.SourceReference `json:"sources"`
	Degraded bool                     `json:"degraded"`
}
