package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger logs one line per request with the caller and the matched route.
// 5xx responses and errors attached with c.Error are logged at error level.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor := Actor(c); actor.Valid() {
			fields = append(fields, zap.String("user_id", actor.UserID.String()), zap.String("role", string(actor.Role)))
		}
		switch {
		case len(c.Errors) > 0:
			logger.Error("request", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= 500:
			logger.Error("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
