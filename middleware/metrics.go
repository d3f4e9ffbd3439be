package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cradi/metrics"
)

// RequestMetrics records the count and latency of every request by route.
func RequestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
