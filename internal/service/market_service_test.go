package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

type fakeFetcher struct {
	mu    sync.Mutex
	raws  []domain.RawMarket
	err   error
	calls atomic.Int32

	// When gate is non-nil each call signals started and blocks on gate.
	started chan struct{}
	gate    chan struct{}
	ctxErr  error
}

func (f *fakeFetcher) ListActiveMarkets(ctx context.Context) ([]domain.RawMarket, error) {
	f.calls.Add(1)
	if f.gate != nil {
		f.started <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErr = ctx.Err()
	return f.raws, f.err
}

func (f *fakeFetcher) set(raws []domain.RawMarket, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raws, f.err = raws, err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func rawMarkets(n int) []domain.RawMarket {
	out := make([]domain.RawMarket, n)
	for i := range out {
		title := fmt.Sprintf("Market %d", i)
		prices := fmt.Sprintf(`["0.%d"]`, i+1)
		out[i] = domain.RawMarket{ID: fmt.Sprintf("m%d", i), Question: &title, OutcomePrices: &prices}
	}
	return out
}

func newTestService(f *fakeFetcher, opts ...Option) (*MarketService, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewMarketService(f, logger, opts...), clock
}

func TestGetMarkets_ServesFromCacheWithinTTL(t *testing.T) {
	f := &fakeFetcher{raws: rawMarkets(3)}
	svc, clock := newTestService(f)
	ctx := context.Background()

	first, err := svc.GetMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)

	clock.Advance(59 * time.Second)
	second, err := svc.GetMarkets(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.calls.Load())

	clock.Advance(time.Second)
	_, err = svc.GetMarkets(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestGetMarkets_StaleFallbackOnFailure(t *testing.T) {
	f := &fakeFetcher{raws: rawMarkets(5)}
	var hookErr error
	var hookStale bool
	svc, clock := newTestService(f, WithFailureHook(func(_ context.Context, err error, servedStale bool) {
		hookErr, hookStale = err, servedStale
	}))
	ctx := context.Background()

	prior, err := svc.GetMarkets(ctx)
	require.NoError(t, err)
	require.Len(t, prior, 5)

	upstreamErr := errors.New("connection refused")
	f.set(nil, upstreamErr)
	clock.Advance(10 * time.Minute)

	got, err := svc.GetMarkets(ctx)
	require.NoError(t, err)
	assert.Equal(t, prior, got)

	snap, stale, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Len(t, snap.Markets, 5)

	assert.Equal(t, upstreamErr, hookErr)
	assert.True(t, hookStale)

	st := svc.Status()
	assert.True(t, st.Stale)
	assert.Equal(t, 5, st.MarketCount)
	assert.Equal(t, "connection refused", st.LastError)
}

func TestGetMarkets_ColdFailurePropagates(t *testing.T) {
	upstreamErr := errors.New("HTTP 502: bad gateway")
	f := &fakeFetcher{err: upstreamErr}
	svc, _ := newTestService(f)

	got, err := svc.GetMarkets(context.Background())

	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, upstreamErr)
	assert.False(t, svc.Status().HasSnapshot)
}

func TestGetMarkets_ConcurrentMissesShareOneFetch(t *testing.T) {
	f := &fakeFetcher{
		raws:    rawMarkets(2),
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	svc, _ := newTestService(f)

	const callers = 20
	var wg sync.WaitGroup
	results := make([][]domain.Market, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetMarkets(context.Background())
		}(i)
	}

	<-f.started
	time.Sleep(20 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], 2)
	}
}

func TestSnapshot_CancelledCallerDoesNotPoisonRefresh(t *testing.T) {
	f := &fakeFetcher{
		raws:    rawMarkets(1),
		started: make(chan struct{}, 1),
		gate:    make(chan struct{}),
	}
	svc, _ := newTestService(f)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetMarkets(ctx)
		firstErr <- err
	}()

	<-f.started
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(f.gate)
	got, err := svc.GetMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.NoError(t, f.ctxErr)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestGetMarket(t *testing.T) {
	svc, _ := newTestService(&fakeFetcher{raws: rawMarkets(3)})
	ctx := context.Background()

	m, err := svc.GetMarket(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Market 1", m.Title)
	assert.InDelta(t, 20.0, m.CurrentPrice, 1e-9)

	_, err = svc.GetMarket(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory(t *testing.T) {
	title := "Synthetic"
	prices := `["0.6"]`
	f := &fakeFetcher{raws: []domain.RawMarket{{ID: "abc", Question: &title, OutcomePrices: &prices}}}
	svc, _ := newTestService(f)
	ctx := context.Background()

	h, err := svc.History(ctx, "abc", 7)
	require.NoError(t, err)
	require.Len(t, h.Data, 8)
	assert.Equal(t, 60.0, h.Data[7].Price)
	assert.Equal(t, "Mar 10", h.Data[7].Timestamp)

	_, err = svc.History(ctx, "nope", 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAggregates(t *testing.T) {
	svc, _ := newTestService(&fakeFetcher{raws: rawMarkets(12)})
	ctx := context.Background()

	movers, err := svc.TopMovers(ctx)
	require.NoError(t, err)
	assert.Len(t, movers.Gainers, 10)
	assert.Len(t, movers.Losers, 10)

	cats, err := svc.CategoryBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, domain.CategoryData{Name: "Other", Value: 12, Color: "hsl(var(--chart-1))"}, cats[0])

	board, err := svc.LiquidityLeaderboard(ctx)
	require.NoError(t, err)
	assert.Len(t, board, 5)

	feed, err := svc.ActivityFeed(ctx)
	require.NoError(t, err)
	assert.Len(t, feed, 10)

	filtered, err := svc.ListMarkets(ctx, "", "market 1")
	require.NoError(t, err)
	assert.Len(t, filtered, 3) // 1, 10, 11
}

func TestAggregates_PropagateColdFailure(t *testing.T) {
	svc, _ := newTestService(&fakeFetcher{err: errors.New("down")})
	ctx := context.Background()

	_, err := svc.TopMovers(ctx)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	_, err = svc.CategoryBreakdown(ctx)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	_, err = svc.LiquidityLeaderboard(ctx)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestSnapshotHook(t *testing.T) {
	var got domain.Snapshot
	svc, clock := newTestService(&fakeFetcher{raws: rawMarkets(4)}, WithSnapshotHook(func(_ context.Context, snap domain.Snapshot) {
		got = snap
	}))

	_, err := svc.GetMarkets(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Markets, 4)
	assert.Equal(t, clock.Now(), got.FetchedAt)
	assert.Equal(t, 4, svc.Status().Tracked)
}
