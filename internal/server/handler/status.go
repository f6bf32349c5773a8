package handler

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/service"
)

// CacheStatusProvider reports the market cache state.
type CacheStatusProvider interface {
	Status() service.Status
}

// StatusHandler serves the backend status for the dashboard.
type StatusHandler struct {
	cache     CacheStatusProvider
	version   string
	startedAt time.Time
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(cache CacheStatusProvider, version string) *StatusHandler {
	return &StatusHandler{cache: cache, version: version, startedAt: time.Now()}
}

// GetStatus responds with the cache state and process uptime. It never
// triggers a refresh.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"cache":          h.cache.Status(),
	})
}
