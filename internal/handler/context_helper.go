package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-attend-api/internal/middleware"
	"github.com/noah-isme/campus-attend-api/internal/models"
)

// claimsFromContext returns the authenticated identity set by the JWT
// middleware, nil when the request never passed through it.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*models.JWTClaims)
	return claims
}
