package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assignment-helper-api/internal/middleware"
	"github.com/noah-isme/assignment-helper-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func accountFromContext(c *gin.Context) *models.Account {
	value, exists := c.Get(middleware.ContextAccountKey)
	if !exists {
		return nil
	}
	account, ok := value.(*models.Account)
	if !ok {
		return nil
	}
	return account
}
