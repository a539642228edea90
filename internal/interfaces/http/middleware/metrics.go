package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"equi-cloud.backend/pkg/metrics"
)

// MetricsMiddleware records request counts and latencies. The route template
// (not the raw path) is used as the label so user ids never become labels.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
