package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/impawawa/Final-Project/internal/observability"
)

func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// unmatched routes share one label to bound cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
