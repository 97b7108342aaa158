package middleware

import (
	"net/http"

	"classhub/internal/infrastructure/monitoring"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records authorization denials for one-shot
// endpoints, labeled by route so a misbehaving client stands out.
func MetricsMiddleware(collector *monitoring.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() == http.StatusForbidden {
			collector.RecordAuthDenial(c.Request.Method + " " + c.FullPath())
		}
	}
}
