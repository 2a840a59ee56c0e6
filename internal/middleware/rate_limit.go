package middleware

import (
	"context"
	"net/http"
	"strconv"

	"authhub/internal/cache"
	"authhub/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (cache.Decision, error)
}

// RateLimit counts requests per client IP under scope. A nil limiter lets
// everything through, and so does a limiter error.
func RateLimit(limiter Limiter, scope string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		d, err := limiter.Allow(c.Request.Context(), scope+":ip:"+c.ClientIP())
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}

		retryAfter := strconv.Itoa(int(d.RetryAfter.Seconds()))
		if !d.Allowed {
			metrics.RateLimitExceeded.WithLabelValues(scope).Inc()
			c.Header("Retry-After", retryAfter)
			abort(c, http.StatusTooManyRequests, "Too Many Requests. Try again in "+d.RetryAfter.String())
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", retryAfter)
		c.Next()
	}
}
