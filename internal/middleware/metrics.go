package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studere/studere-api/internal/service"
)

// Metrics records per-request timing and status against the route template,
// so /sessions/:id aggregates as one series regardless of the concrete ID.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// unmatched routes collapse into one bucket to keep cardinality bounded
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
