package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/impawawa/Final-Project/internal/ratelimit"
)

// RateLimit rejects requests over the per-IP fixed window limit with 429
// before any later handler in the chain runs.
func RateLimit(guard *ratelimit.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := guard.Check(c.Request)
		guard.SetHeaders(c.Writer.Header(), res)

		if res.Proceed {
			c.Next()
			return
		}

		if res.Err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Rate limit check failed",
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusTooManyRequests, guard.Rejection())
	}
}
