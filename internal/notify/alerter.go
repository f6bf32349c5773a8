package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// Event types understood by the notifier's filter.
const (
	EventUpstreamDown      = "upstream_down"
	EventUpstreamRecovered = "upstream_recovered"
)

const (
	defaultAlertCooldown = 15 * time.Minute
	sendTimeout          = 15 * time.Second
)

// RefreshAlerter turns market refresh outcomes into operator alerts. It
// alerts when refreshes start failing, repeats at most once per cooldown
// while they keep failing, and sends one recovery notice on the next
// success. Sends happen off the refresh path.
type RefreshAlerter struct {
	notifier *Notifier
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu        sync.Mutex
	failing   bool
	since     time.Time
	lastAlert time.Time
	failures  int

	wg sync.WaitGroup
}

// NewRefreshAlerter creates an alerter. A non-positive cooldown selects the
// default of 15 minutes.
func NewRefreshAlerter(n *Notifier, cooldown time.Duration, logger *slog.Logger) *RefreshAlerter {
	if cooldown <= 0 {
		cooldown = defaultAlertCooldown
	}
	return &RefreshAlerter{
		notifier: n,
		cooldown: cooldown,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "refresh_alerter")),
	}
}

// OnFailure records a failed refresh. Its signature matches
// service.FailureHook.
func (a *RefreshAlerter) OnFailure(ctx context.Context, err error, servedStale bool) {
	now := a.now()

	a.mu.Lock()
	if !a.failing {
		a.failing = true
		a.since = now
		a.failures = 0
	}
	a.failures++
	due := a.lastAlert.IsZero() || now.Sub(a.lastAlert) >= a.cooldown
	if due {
		a.lastAlert = now
	}
	failures, since := a.failures, a.since
	a.mu.Unlock()

	if !due {
		return
	}

	mode := "no cached data, requests are failing"
	if servedStale {
		mode = "serving stale cached data"
	}
	msg := fmt.Sprintf("Gamma API refresh failed (%d consecutive since %s): %v\nDashboard is %s.",
		failures, since.UTC().Format(time.RFC3339), err, mode)
	a.send(ctx, EventUpstreamDown, "Polymarket upstream down", msg)
}

// OnSnapshot records a successful refresh. Its signature matches
// service.SnapshotHook.
func (a *RefreshAlerter) OnSnapshot(ctx context.Context, snap domain.Snapshot) {
	a.mu.Lock()
	wasFailing, since, failures := a.failing, a.since, a.failures
	a.failing = false
	a.failures = 0
	a.lastAlert = time.Time{}
	a.mu.Unlock()

	if !wasFailing {
		return
	}
	msg := fmt.Sprintf("Gamma API recovered after %d failed refreshes (down %s). %d markets cached.",
		failures, a.now().Sub(since).Round(time.Second), len(snap.Markets))
	a.send(ctx, EventUpstreamRecovered, "Polymarket upstream recovered", msg)
}

// Wait blocks until in-flight sends finish.
func (a *RefreshAlerter) Wait() {
	a.wg.Wait()
}

func (a *RefreshAlerter) send(ctx context.Context, event, title, msg string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		if err := a.notifier.Notify(sendCtx, event, title, msg); err != nil {
			a.logger.WarnContext(sendCtx, "alert delivery failed",
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}()
}
