package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one admission decision.
type Event struct {
	Tier    Tier
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// StatsRecorder persists admission decisions. Callers treat errors as
// best-effort and never fail a request because of them.
type StatsRecorder interface {
	Record(ctx context.Context, ev Event) error
}

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

func (c *Counters) add(allowed bool) {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
}

// MemoryStats counts decisions in process.
type MemoryStats struct {
	mu     sync.Mutex
	total  Counters
	byTier map[Tier]Counters
}

func NewMemoryStats() *MemoryStats {
	return &MemoryStats{byTier: make(map[Tier]Counters)}
}

func (s *MemoryStats) Record(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Allowed)
	c := s.byTier[ev.Tier]
	c.add(ev.Allowed)
	s.byTier[ev.Tier] = c
	return nil
}

func (s *MemoryStats) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStats) ByTier() map[Tier]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Tier]Counters, len(s.byTier))
	for k, v := range s.byTier {
		out[k] = v
	}
	return out
}

// RedisStats keeps a cumulative total hash, a per-tier hash and per-minute
// buckets that expire after ttl.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStats(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStats {
	if prefix == "" {
		prefix = "ratelimit:stats"
	}
	return &RedisStats{rdb: rdb, prefix: strings.Trim(prefix, ":"), ttl: ttl}
}

func (s *RedisStats) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	pipe.HIncrBy(ctx, s.prefix+":tier", string(ev.Tier)+":"+field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// MultiStats fans a decision out to several recorders and returns the first
// error after trying all of them.
type MultiStats []StatsRecorder

func (m MultiStats) Record(ctx context.Context, ev Event) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
