package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheHit)
	m.RecordCacheLookup(CacheMiss)
	m.RecordUpstream(50*time.Millisecond, nil)
	m.RecordUpstream(time.Second, errors.New("boom"))
	m.RecordSnapshot(42, time.Unix(1700000000, 0))
	m.RecordHTTPRequest(http.MethodGet, "GET /api/markets", http.StatusOK, 10*time.Millisecond)
	m.SetWSClients(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRequests.WithLabelValues("error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.marketsCached))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "GET /api/markets", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.wsClients))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordCacheLookup(CacheStale)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `polydash_cache_lookups_total{result="stale"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCacheLookup(CacheHit)
		m.RecordUpstream(time.Second, nil)
		m.RecordSnapshot(1, time.Now())
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.SetWSClients(1)
	})
	assert.Nil(t, m.Registry())
}
