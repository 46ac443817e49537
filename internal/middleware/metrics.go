package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusops/classtrack-api/internal/service"
)

// Metrics records one observation per request. The route template is used as
// the path label so /rooms/:id does not explode metric cardinality.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes collapse into one label.
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
