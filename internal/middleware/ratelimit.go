package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"aetherlink-be/internal/logger"
	"aetherlink-be/internal/ratelimit"
	"aetherlink-be/internal/response"
)

// healthPath is the only route exempt from rate limiting.
const healthPath = "/health"

// RateLimiter wires the per-client windows, the optional global throttle and
// the admission statistics into one gin middleware.
type RateLimiter struct {
	limiter  *ratelimit.Limiter
	throttle *ratelimit.Throttle
	stats    ratelimit.StatsRecorder
}

func NewRateLimiter(limiter *ratelimit.Limiter, throttle *ratelimit.Throttle, stats ratelimit.StatsRecorder) *RateLimiter {
	return &RateLimiter{
		limiter:  limiter,
		throttle: throttle,
		stats:    stats,
	}
}

// LimitMiddleware classifies the request into a tier and rejects it with 429
// once the client's window is full. The root health check passes untouched.
func (rl *RateLimiter) LimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == healthPath {
			c.Next()
			return
		}

		tier := ratelimit.TierFor(c.Request.Method, path)

		err := rl.throttle.Allow()
		if err == nil {
			err = rl.limiter.Check(ratelimit.ClientIdentifier(c.Request.Header), tier)
		}
		rl.record(c, tier, err == nil)

		if err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) record(c *gin.Context, tier ratelimit.Tier, allowed bool) {
	if rl.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
	defer cancel()

	err := rl.stats.Record(ctx, ratelimit.Event{
		Tier:    tier,
		Allowed: allowed,
		Method:  c.Request.Method,
		Path:    c.FullPath(),
		At:      time.Now(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record rate limit stats")
	}
}
