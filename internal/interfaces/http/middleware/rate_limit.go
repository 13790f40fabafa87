// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/infrastructure/database/redis"
	"github.com/veggiefresh/grocery-backend/internal/interfaces/http/response"
)

// Limiter counts requests per key
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) (*redis.RateLimitResult, error)
}

// RateLimit limits requests per client IP. scope separates counters so the
// stricter auth limit does not share a window with the global one. When the
// limiter is unavailable the request is let through.
func RateLimit(limiter Limiter, scope string, limit int, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		result, err := limiter.Allow(ctx, scope+":"+c.ClientIP(), limit)
		if err != nil {
			log.WithError(err).WithField("scope", scope).Warn("rate limiter unavailable")
			c.Next()
			return
		}

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Abort(c, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded")
			return
		}

		c.Next()
	}
}
