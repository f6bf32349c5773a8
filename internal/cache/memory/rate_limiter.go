// Package memory provides the in-process rate limiter used when Redis is not
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

const (
	defaultIdleTTL   = 10 * time.Minute
	sweepEveryNCalls = 1024
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements domain.RateLimiter with one token bucket per key.
// A bucket refills at limit tokens per window and holds at most limit tokens.
// Buckets idle for longer than the idle TTL are swept lazily.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*entry
	idleTTL time.Duration
	calls   int
	now     func() time.Time
}

// NewRateLimiter returns an empty RateLimiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*entry),
		idleTTL: defaultIdleTTL,
		now:     time.Now,
	}
}

// Allow reports whether one more request for key fits the budget. It never
// returns an error.
func (rl *RateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.calls++
	if rl.calls%sweepEveryNCalls == 0 {
		rl.sweepLocked(now)
	}

	e, ok := rl.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		rl.buckets[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// Len reports the number of live buckets.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for k, e := range rl.buckets {
		if now.Sub(e.lastSeen) > rl.idleTTL {
			delete(rl.buckets, k)
		}
	}
}

// Compile-time interface check.
var _ domain.RateLimiter = (*RateLimiter)(nil)
