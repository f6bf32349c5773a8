package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	ListMarkets(ctx context.Context, category, query string) ([]domain.Market, error)
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	TopMovers(ctx context.Context) (domain.TopMovers, error)
	History(ctx context.Context, id string, days int) (domain.MarketHistory, error)
}

// MarketHandler serves market-related HTTP endpoints.
type MarketHandler struct {
	markets        MarketService
	maxHistoryDays int
	logger         *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
// maxHistoryDays bounds the history range; zero selects the default.
func NewMarketHandler(markets MarketService, maxHistoryDays int, logger *slog.Logger) *MarketHandler {
	if maxHistoryDays <= 0 {
		maxHistoryDays = DefaultMaxHistoryDays
	}
	return &MarketHandler{
		markets:        markets,
		maxHistoryDays: maxHistoryDays,
		logger:         logHandler(logger, "market"),
	}
}

// ListMarkets returns the normalized market list, optionally filtered.
// GET /api/markets?category=Crypto&q=bitcoin
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	markets, err := h.markets.ListMarkets(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch markets")
		return
	}
	writeJSON(w, http.StatusOK, markets)
}

// TopMovers returns the top gainers and losers.
// GET /api/markets/movers
func (h *MarketHandler) TopMovers(w http.ResponseWriter, r *http.Request) {
	movers, err := h.markets.TopMovers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch top movers")
		return
	}
	writeJSON(w, http.StatusOK, movers)
}

// GetMarket returns a single market by ID.
// GET /api/markets/{id}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Market ID is required")
		return
	}

	m, err := h.markets.GetMarket(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch market")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// History returns the synthetic price history of a market.
// GET /api/markets/{id}/history?days=7
func (h *MarketHandler) History(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Market ID is required")
		return
	}

	hist, err := h.markets.History(r.Context(), id, parseDays(r, h.maxHistoryDays))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Failed to fetch market history")
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
