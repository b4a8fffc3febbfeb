package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventmarket/backend/internal/access"
	"github.com/eventmarket/backend/internal/models"
)

// Actor returns the caller set by JWT. The zero Actor is returned on unauthenticated routes.
func Actor(c *gin.Context) access.Actor {
	var a access.Actor
	if v, ok := c.Get(ContextUserID); ok {
		a.UserID, _ = v.(uuid.UUID)
	}
	if v, ok := c.Get(ContextUserRole); ok {
		role, _ := v.(string)
		a.Role = models.Role(role)
	}
	return a
}
