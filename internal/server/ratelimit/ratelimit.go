// Package ratelimit is the per-user token-bucket gate in front of the API.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an untouched bucket is kept before it is dropped.
const idleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Gate hands out one token bucket per key. Safe for concurrent use.
type Gate struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	buckets   map[string]*bucket
	now       func() time.Time
	lastSweep time.Time
}

// New allows perMinute requests per key with the given burst. A non-positive
// perMinute disables limiting.
func New(perMinute, burst int) *Gate {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	return &Gate{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow takes a token for key. When it is refused, resetAt is the earliest
// time a retry can succeed.
func (g *Gate) Allow(key string) (bool, time.Time) {
	now := g.now()
	lim := g.limiter(key, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, now
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, now.Add(delay)
	}
	return true, now
}

func (g *Gate) limiter(key string, now time.Time) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(g.lastSweep) > idleTTL {
		for k, b := range g.buckets {
			if now.Sub(b.lastSeen) > idleTTL {
				delete(g.buckets, k)
			}
		}
		g.lastSweep = now
	}

	b, ok := g.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(g.limit, g.burst)}
		g.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}
