package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	s3blob "github.com/alanyoungcy/polymarketdash/internal/blob/s3"
	"github.com/alanyoungcy/polymarketdash/internal/cache/memory"
	"github.com/alanyoungcy/polymarketdash/internal/cache/redis"
	"github.com/alanyoungcy/polymarketdash/internal/config"
	"github.com/alanyoungcy/polymarketdash/internal/domain"
	"github.com/alanyoungcy/polymarketdash/internal/metrics"
	"github.com/alanyoungcy/polymarketdash/internal/notify"
	"github.com/alanyoungcy/polymarketdash/internal/platform/polymarket"
	"github.com/alanyoungcy/polymarketdash/internal/server"
	"github.com/alanyoungcy/polymarketdash/internal/server/handler"
	"github.com/alanyoungcy/polymarketdash/internal/server/ws"
	"github.com/alanyoungcy/polymarketdash/internal/service"
)

// exportTimeout bounds a single snapshot upload.
const exportTimeout = 30 * time.Second

// Dependencies bundles everything the server needs. It is constructed by Wire
// and torn down by the returned cleanup function.
type Dependencies struct {
	Metrics     *metrics.Metrics
	Markets     *service.MarketService
	Hub         *ws.Hub
	RateLimiter domain.RateLimiter
	Notifier    *notify.Notifier
	Server      *server.Server
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, version string, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Metrics: metrics.New(),
	}

	// --- Rate limiter: redis when enabled, otherwise in-process ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.RateLimiter = redis.NewRateLimiter(redisClient)
	} else {
		deps.RateLimiter = memory.NewRateLimiter()
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Live push ---
	deps.Hub = ws.NewHub(cfg.Server.CORSOrigins, deps.Metrics, logger)

	opts := []service.Option{
		service.WithTTL(cfg.Cache.TTL.Duration),
		service.WithMetrics(deps.Metrics),
		service.WithSnapshotHook(deps.Hub.PublishSnapshot),
		service.WithFailureHook(deps.Hub.PublishFailure),
	}

	if cfg.Notify.Enabled() {
		alerter := notify.NewRefreshAlerter(deps.Notifier, cfg.Notify.Cooldown.Duration, logger)
		closers = append(closers, alerter.Wait)
		opts = append(opts,
			service.WithSnapshotHook(alerter.OnSnapshot),
			service.WithFailureHook(alerter.OnFailure),
		)
	}

	// --- S3 snapshot export ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		exporter := s3blob.NewSnapshotExporter(s3Client, cfg.S3.Prefix)
		hook, wait := exportHook(exporter, logger)
		closers = append(closers, wait)
		opts = append(opts, service.WithSnapshotHook(hook))
	}

	// --- Upstream + cache ---
	gamma := polymarket.NewGammaClient(
		cfg.Polymarket.GammaHost,
		cfg.Polymarket.Timeout.Duration,
		polymarket.WithMarketLimit(cfg.Polymarket.MarketLimit),
	)
	deps.Markets = service.NewMarketService(gamma, logger, opts...)

	// --- HTTP ---
	deps.Server = server.NewServer(
		server.Config{
			Port:        cfg.Server.Port,
			CORSOrigins: cfg.Server.CORSOrigins,
			APIKey:      cfg.Server.APIKey,
			RateLimit:   cfg.Server.RateLimit,
			RateWindow:  cfg.Server.RateWindow.Duration,
		},
		server.Handlers{
			Health:    handler.NewHealthHandler(),
			Status:    handler.NewStatusHandler(deps.Markets, version),
			Markets:   handler.NewMarketHandler(deps.Markets, cfg.Server.MaxHistoryDays, logger),
			Analytics: handler.NewAnalyticsHandler(deps.Markets, logger),
		},
		deps.Hub,
		deps.RateLimiter,
		deps.Metrics,
		logger,
	)

	return deps, cleanup, nil
}

// exportHook adapts a SnapshotSink into a service.SnapshotHook that uploads
// in the background. The returned wait function blocks until pending uploads
// end.
func exportHook(sink domain.SnapshotSink, logger *slog.Logger) (service.SnapshotHook, func()) {
	var wg sync.WaitGroup
	log := logger.With(slog.String("component", "snapshot_export"))

	hook := func(ctx context.Context, snap domain.Snapshot) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exportTimeout)
			defer cancel()
			if err := sink.StoreSnapshot(exportCtx, snap); err != nil {
				log.WarnContext(exportCtx, "snapshot export failed",
					slog.String("error", err.Error()),
				)
				return
			}
			log.DebugContext(exportCtx, "snapshot exported",
				slog.Int("markets", len(snap.Markets)),
			)
		}()
	}
	return hook, wg.Wait
}
