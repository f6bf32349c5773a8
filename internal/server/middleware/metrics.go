package middleware

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/metrics"
)

// Metrics records request counts and latency per mux pattern. It must wrap
// the ServeMux directly so the matched pattern is visible after dispatch.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
