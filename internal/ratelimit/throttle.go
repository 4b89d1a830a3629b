package ratelimit

import (
	"math"
	"time"

	"golang.org/x/time/rate"

	"aetherlink-be/internal/result"
)

// Throttle is a process-wide token bucket applied before the per-client
// windows. A nil Throttle admits everything.
type Throttle struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewThrottle returns nil when rps is not positive.
func NewThrottle(rps float64, burst int) *Throttle {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = int(math.Ceil(rps))
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(rps), burst), now: time.Now}
}

func (t *Throttle) Allow() error {
	if t == nil {
		return nil
	}

	now := t.now()
	r := t.limiter.ReserveN(now, 1)
	if !r.OK() {
		return t.rejected(1)
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return t.rejected(int64(math.Ceil(delay.Seconds())))
	}
	return nil
}

func (t *Throttle) rejected(retryAfter int64) error {
	if retryAfter < 1 {
		retryAfter = 1
	}
	return result.New(result.CodeRateLimited, "Rate limit exceeded. Please try again later.", map[string]any{
		"limit":      t.limiter.Burst(),
		"window":     1,
		"retryAfter": retryAfter,
	})
}
