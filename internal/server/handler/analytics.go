package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// AnalyticsService is the subset of the service layer behind the dashboard
// charts.
type AnalyticsService interface {
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryData, error)
	LiquidityLeaderboard(ctx context.Context) ([]domain.LeaderboardItem, error)
	ActivityFeed(ctx context.Context) ([]domain.FeedItem, error)
}

// AnalyticsHandler serves aggregate views over the market snapshot.
type AnalyticsHandler struct {
	svc    AnalyticsService
	logger *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logHandler(logger, "analytics")}
}

// Categories returns the category breakdown.
// GET /api/analytics/categories
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.CategoryBreakdown(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch category breakdown")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Leaderboard returns the liquidity leaderboard.
// GET /api/analytics/leaderboard
func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.LiquidityLeaderboard(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// Feed returns the live activity feed.
// GET /api/analytics/feed
func (h *AnalyticsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ActivityFeed(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch activity feed")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
