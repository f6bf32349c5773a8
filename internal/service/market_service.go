// Package service holds the market cache and the read operations built on
// top of it.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alanyoungcy/polymarketdash/internal/analytics"
	"github.com/alanyoungcy/polymarketdash/internal/domain"
	"github.com/alanyoungcy/polymarketdash/internal/metrics"
)

// DefaultTTL is how long a snapshot is served before the next read refreshes
// it.
const DefaultTTL = 60 * time.Second

const refreshKey = "markets"

// MarketFetcher retrieves raw market records from the upstream API.
type MarketFetcher interface {
	ListActiveMarkets(ctx context.Context) ([]domain.RawMarket, error)
}

// SnapshotHook is called after every successful refresh.
type SnapshotHook func(ctx context.Context, snap domain.Snapshot)

// FailureHook is called after every failed refresh. servedStale reports
// whether a prior snapshot was available to fall back on.
type FailureHook func(ctx context.Context, err error, servedStale bool)

// Status describes the cache without triggering a refresh.
type Status struct {
	HasSnapshot bool      `json:"hasSnapshot"`
	FetchedAt   time.Time `json:"fetchedAt"`
	AgeSeconds  float64   `json:"ageSeconds"`
	MarketCount int       `json:"marketCount"`
	Stale       bool      `json:"stale"`
	LastError   string    `json:"lastError,omitempty"`
	Tracked     int       `json:"trackedPrices"`
}

// MarketService owns the process-wide market snapshot. Reads within the TTL
// are served from memory; a read after expiry refreshes lazily. Concurrent
// refreshes are collapsed into one upstream call.
type MarketService struct {
	fetcher    MarketFetcher
	normalizer *analytics.Normalizer
	estimator  *analytics.Estimator
	ttl        time.Duration
	now        func() time.Time
	metrics    *metrics.Metrics
	logger     *slog.Logger

	onSnapshot []SnapshotHook
	onFailure  []FailureHook

	group singleflight.Group

	mu      sync.RWMutex
	snap    *domain.Snapshot
	lastErr error
}

// Option customises a MarketService.
type Option func(*MarketService)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *MarketService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the wall clock used for snapshot age and history labels.
func WithClock(now func() time.Time) Option {
	return func(s *MarketService) { s.now = now }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *MarketService) { s.metrics = m }
}

// WithSnapshotHook registers a callback for successful refreshes.
func WithSnapshotHook(h SnapshotHook) Option {
	return func(s *MarketService) { s.onSnapshot = append(s.onSnapshot, h) }
}

// WithFailureHook registers a callback for failed refreshes.
func WithFailureHook(h FailureHook) Option {
	return func(s *MarketService) { s.onFailure = append(s.onFailure, h) }
}

// NewMarketService creates a MarketService with an empty cache.
func NewMarketService(fetcher MarketFetcher, logger *slog.Logger, opts ...Option) *MarketService {
	s := &MarketService{
		fetcher:   fetcher,
		estimator: analytics.NewEstimator(),
		ttl:       DefaultTTL,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "market_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.normalizer = analytics.NewNormalizer(s.estimator, logger, analytics.WithClock(s.now))
	return s
}

// GetMarkets returns the current normalized market list, refreshing it when
// the snapshot is older than the TTL. A failed refresh falls back to the
// previous snapshot regardless of its age; with no previous snapshot the
// error is returned wrapping domain.ErrUpstream.
func (s *MarketService) GetMarkets(ctx context.Context) ([]domain.Market, error) {
	snap, _, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Markets, nil
}

// Snapshot is GetMarkets plus the snapshot timestamp and whether it was
// served stale after a failed refresh.
func (s *MarketService) Snapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	if snap, ok := s.fresh(); ok {
		s.metrics.RecordCacheLookup(metrics.CacheHit)
		return snap, false, nil
	}
	s.metrics.RecordCacheLookup(metrics.CacheMiss)

	// The shared refresh must not inherit one caller's cancellation.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.refresh(detached)
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.(domain.Snapshot), false, nil
		}
		if prior, ok := s.current(); ok {
			s.metrics.RecordCacheLookup(metrics.CacheStale)
			s.logger.WarnContext(ctx, "market_service: serving stale snapshot",
				slog.Duration("age", prior.Age(s.now())),
				slog.String("error", res.Err.Error()),
			)
			return prior, true, nil
		}
		return domain.Snapshot{}, false, fmt.Errorf("market_service: refresh: %w: %w", domain.ErrUpstream, res.Err)
	case <-ctx.Done():
		return domain.Snapshot{}, false, fmt.Errorf("market_service: wait for refresh: %w", ctx.Err())
	}
}

// GetMarket returns the market with the given id from the current snapshot.
func (s *MarketService) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return domain.Market{}, err
	}
	for _, m := range markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Market{}, fmt.Errorf("market_service: market %q: %w", id, domain.ErrNotFound)
}

// ListMarkets returns markets narrowed by category and title query.
func (s *MarketService) ListMarkets(ctx context.Context, category, query string) ([]domain.Market, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Filter(markets, category, query), nil
}

// TopMovers returns the largest gainers and losers.
func (s *MarketService) TopMovers(ctx context.Context) (domain.TopMovers, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return domain.TopMovers{}, err
	}
	return analytics.TopMovers(markets, analytics.DefaultMoversLimit), nil
}

// CategoryBreakdown returns the category histogram.
func (s *MarketService) CategoryBreakdown(ctx context.Context) ([]domain.CategoryData, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.CategoryBreakdown(markets), nil
}

// LiquidityLeaderboard returns the most liquid markets.
func (s *MarketService) LiquidityLeaderboard(ctx context.Context) ([]domain.LeaderboardItem, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.LiquidityLeaderboard(markets, analytics.DefaultLeaderboardLimit), nil
}

// ActivityFeed returns the most active markets as feed entries.
func (s *MarketService) ActivityFeed(ctx context.Context) ([]domain.FeedItem, error) {
	markets, err := s.GetMarkets(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ActivityFeed(markets, analytics.DefaultFeedLimit), nil
}

// History returns the synthetic price history of one market.
func (s *MarketService) History(ctx context.Context, id string, days int) (domain.MarketHistory, error) {
	m, err := s.GetMarket(ctx, id)
	if err != nil {
		return domain.MarketHistory{}, err
	}
	return analytics.History(m, days, s.now()), nil
}

// Status reports the cache state without refreshing it.
func (s *MarketService) Status() Status {
	s.mu.RLock()
	snap, lastErr := s.snap, s.lastErr
	s.mu.RUnlock()

	st := Status{Tracked: s.estimator.Len()}
	if lastErr != nil {
		st.LastError = lastErr.Error()
	}
	if snap == nil {
		return st
	}
	age := snap.Age(s.now())
	st.HasSnapshot = true
	st.FetchedAt = snap.FetchedAt
	st.AgeSeconds = age.Seconds()
	st.MarketCount = len(snap.Markets)
	st.Stale = age >= s.ttl
	return st
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (s *MarketService) current() (domain.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return domain.Snapshot{}, false
	}
	return *s.snap, true
}

func (s *MarketService) fresh() (domain.Snapshot, bool) {
	snap, ok := s.current()
	if !ok || snap.Age(s.now()) >= s.ttl {
		return domain.Snapshot{}, false
	}
	return snap, true
}

// refresh fetches and normalizes one upstream listing and swaps it in as the
// current snapshot. It runs at most once at a time via the singleflight group.
func (s *MarketService) refresh(ctx context.Context) (domain.Snapshot, error) {
	// Another caller may have completed a refresh since our freshness check.
	if snap, ok := s.fresh(); ok {
		return snap, nil
	}

	start := time.Now()
	raws, err := s.fetcher.ListActiveMarkets(ctx)
	s.metrics.RecordUpstream(time.Since(start), err)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		hasPrior := s.snap != nil
		s.mu.Unlock()

		s.logger.ErrorContext(ctx, "market_service: upstream fetch failed",
			slog.String("error", err.Error()),
			slog.Bool("has_prior", hasPrior),
		)
		for _, h := range s.onFailure {
			h(ctx, err, hasPrior)
		}
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{
		Markets:   s.normalizer.Normalize(raws),
		FetchedAt: s.now(),
	}

	s.mu.Lock()
	s.snap = &snap
	s.lastErr = nil
	s.mu.Unlock()

	s.metrics.RecordSnapshot(len(snap.Markets), snap.FetchedAt)
	s.logger.InfoContext(ctx, "market_service: snapshot refreshed",
		slog.Int("raw", len(raws)),
		slog.Int("markets", len(snap.Markets)),
		slog.Duration("took", time.Since(start)),
	)
	for _, h := range s.onSnapshot {
		h(ctx, snap)
	}
	return snap, nil
}
