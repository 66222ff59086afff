package middleware

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/gin-gonic/gin"
)

func Logger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"request_id", c.GetString(RequestIDHeader),
			"ip", c.ClientIP(),
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "request failed", args...)
			return
		}
		log.Info(c.Request.Context(), "request completed", args...)
	}
}
