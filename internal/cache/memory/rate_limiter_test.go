package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}
	ok, _ := rl.Allow(ctx, "a", 3, time.Minute)
	assert.False(t, ok)

	// Other keys have their own budget.
	ok, _ = rl.Allow(ctx, "b", 3, time.Minute)
	assert.True(t, ok)

	// One token refills every window/limit.
	now = now.Add(21 * time.Second)
	ok, _ = rl.Allow(ctx, "a", 3, time.Minute)
	assert.True(t, ok)
	ok, _ = rl.Allow(ctx, "a", 3, time.Minute)
	assert.False(t, ok)
}

func TestRateLimiter_DisabledLimit(t *testing.T) {
	rl := NewRateLimiter()
	ok, err := rl.Allow(context.Background(), "a", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, rl.Len())
}

func TestRateLimiter_SweepsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	ctx := context.Background()

	rl.Allow(ctx, "idle", 1, time.Second)
	now = now.Add(time.Hour)
	for i := 0; i < sweepEveryNCalls; i++ {
		rl.Allow(ctx, "busy", 1_000_000, time.Second)
	}

	assert.Equal(t, 1, rl.Len())
}
