package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eventmarket/backend/internal/models"
	"github.com/eventmarket/backend/pkg/response"
)

// RequireRole admits only callers whose JWT role is one of roles. Must run after JWT.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if !actor.Valid() {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "role "+string(actor.Role)+" may not perform this action")
		c.Abort()
	}
}
