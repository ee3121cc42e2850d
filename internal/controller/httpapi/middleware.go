package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const actorKey = "actor_id"

// RequestLogger logs every request with zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// RequireActor resolves the acting user from the X-User-ID header. Session
// management is out of scope here; an upstream gateway authenticates the
// header, this layer just needs an explicit identity instead of ambient
// state.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID header is required"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID must be a UUID"})
			return
		}

		c.Set(actorKey, id)
		c.Next()
	}
}

func actorID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(actorKey)
	id, _ := v.(uuid.UUID)
	return id
}
