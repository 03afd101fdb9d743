package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/authz"
	"github.com/havenpaws/shelter-api/internal/middleware"
	"github.com/havenpaws/shelter-api/internal/models"
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

func subjectFromContext(c *gin.Context) (authz.Subject, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return authz.Subject{}, false
	}
	return authz.Subject{UserID: claims.UserID, Role: claims.Role}, true
}
