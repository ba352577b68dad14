package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/logger"
)

// LoggingMiddleware 访问日志
func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if admin, ok := GetAdmin(c); ok {
			kv = append(kv, "admin", admin)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request failed", kv...)
		case c.Writer.Status() >= 400:
			log.Warn("request rejected", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}
