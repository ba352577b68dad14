package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/tool-catalog/internal/metrics"
)

// MetricsMiddleware 记录请求耗时，route 标签使用路由模板
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
