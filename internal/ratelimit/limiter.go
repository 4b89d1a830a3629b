// Package ratelimit implements per-client sliding-window admission control
// with a handful of fixed tiers.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"aetherlink-be/internal/result"
)

// Limiter keeps, per client and tier, the millisecond timestamps of admitted
// requests that are still inside the tier's window.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]map[Tier][]int64

	limits        map[Tier]Limit
	maxWindow     time.Duration
	sweepInterval time.Duration
	now           func() time.Time
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLimits replaces the quota of the given tiers. Tiers not mentioned keep
// their defaults.
func WithLimits(limits map[Tier]Limit) Option {
	return func(l *Limiter) {
		for tier, limit := range limits {
			l.limits[tier] = limit
		}
	}
}

func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.sweepInterval = d }
}

func New(opts ...Option) *Limiter {
	l := &Limiter{
		entries:       make(map[string]map[Tier][]int64),
		limits:        make(map[Tier]Limit, len(DefaultLimits)),
		sweepInterval: 5 * time.Minute,
		now:           time.Now,
	}
	for tier, limit := range DefaultLimits {
		l.limits[tier] = limit
	}
	for _, opt := range opts {
		opt(l)
	}
	for _, limit := range l.limits {
		if limit.Window > l.maxWindow {
			l.maxWindow = limit.Window
		}
	}
	return l
}

// Limit returns the quota of a tier; unknown tiers fall back to READ.
func (l *Limiter) Limit(tier Tier) Limit {
	if limit, ok := l.limits[tier]; ok {
		return limit
	}
	return l.limits[TierRead]
}

// Check admits the request and records it, or returns a RATE_LIMITED error
// with the limit, the window in seconds and retryAfter in seconds.
func (l *Limiter) Check(identifier string, tier Tier) error {
	limit := l.Limit(tier)
	windowMs := limit.Window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UnixMilli()
	windowStart := now - windowMs

	tiers, ok := l.entries[identifier]
	if !ok {
		tiers = make(map[Tier][]int64)
		l.entries[identifier] = tiers
	}

	stamps := tiers[tier]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts > windowStart {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= limit.MaxRequests {
		tiers[tier] = kept
		retryAfter := int64(1)
		if len(kept) > 0 {
			if wait := ceilDiv(kept[0]+windowMs-now, 1000); wait > retryAfter {
				retryAfter = wait
			}
		}
		return result.New(result.CodeRateLimited, "Rate limit exceeded. Please try again later.", map[string]any{
			"limit":      limit.MaxRequests,
			"window":     int64(limit.Window / time.Second),
			"retryAfter": retryAfter,
		})
	}

	tiers[tier] = append(kept, now)
	return nil
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Sweep drops timestamps older than the largest window and forgets clients
// with nothing left.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UnixMilli()
	maxWindowMs := l.maxWindow.Milliseconds()

	for id, tiers := range l.entries {
		for tier, stamps := range tiers {
			kept := stamps[:0]
			for _, ts := range stamps {
				if now-ts < maxWindowMs {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(tiers, tier)
			} else {
				tiers[tier] = kept
			}
		}
		if len(tiers) == 0 {
			delete(l.entries, id)
		}
	}
}

// StartJanitor sweeps on a ticker until ctx is cancelled.
func (l *Limiter) StartJanitor(ctx context.Context) {
	if l.sweepInterval <= 0 {
		return
	}

	t := time.NewTicker(l.sweepInterval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Sweep()
			}
		}
	}()
}

// Reset forgets every client.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]map[Tier][]int64)
}

// Clients reports how many identifiers are tracked.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
