package domain

import (
	"context"
	"time"
)

// RateLimiter provides per-key request rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
