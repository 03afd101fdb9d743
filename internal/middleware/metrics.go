package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/havenpaws/shelter-api/internal/service"
)

// Metrics records per-request duration and count. Scrapes of the metrics
// endpoint itself are not observed to keep the series free of self-traffic.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Unmatched routes share one label so bots cannot explode cardinality.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
