package analytics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

var historyNow = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func TestHistory_Deterministic(t *testing.T) {
	m := domain.Market{ID: "abc", CurrentPrice: 60}

	got := History(m, 7, historyNow)

	require.Len(t, got.Data, 8)
	prices := make([]float64, len(got.Data))
	for i, p := range got.Data {
		prices[i] = p.Price
	}
	assert.Equal(t, []float64{60.5, 58.2, 56.3, 55.9, 58.0, 56.5, 55.8, 60.0}, prices)
	assert.Equal(t, 60.0, got.Data[7].Price)
	assert.Equal(t, -0.3, got.MomentumScore)

	assert.Equal(t, "Mar 3", got.Data[0].Timestamp)
	assert.Equal(t, "Mar 10", got.Data[7].Timestamp)

	again, err := json.Marshal(History(m, 7, historyNow))
	require.NoError(t, err)
	first, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
}

func TestHistory_VolumeRaisesMomentum(t *testing.T) {
	m := domain.Market{ID: "abc", CurrentPrice: 60, Volume: 999_999}
	assert.Equal(t, 17.7, History(m, 7, historyNow).MomentumScore)
}

func TestHistory_ClampsToBounds(t *testing.T) {
	m := domain.Market{ID: "m1", CurrentPrice: 94, Volume: 100}

	got := History(m, 3, historyNow)

	require.Len(t, got.Data, 4)
	for _, p := range got.Data[:3] {
		assert.Equal(t, 95.0, p.Price)
	}
	assert.Equal(t, 94.0, got.Data[3].Price)
	assert.Equal(t, 5.3, got.MomentumScore)
}

func TestHistory_ZeroDays(t *testing.T) {
	got := History(domain.Market{ID: "abc", CurrentPrice: 60}, 0, historyNow)

	require.Len(t, got.Data, 1)
	assert.Equal(t, 60.0, got.Data[0].Price)
	assert.Equal(t, "Mar 10", got.Data[0].Timestamp)
	assert.Equal(t, 0.0, got.MomentumScore)
}

func TestHistory_LabelsCrossMonthBoundary(t *testing.T) {
	now := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	got := History(domain.Market{ID: "x", CurrentPrice: 50}, 3, now)

	labels := make([]string, len(got.Data))
	for i, p := range got.Data {
		labels[i] = p.Timestamp
	}
	assert.Equal(t, []string{"Feb 28", "Feb 29", "Mar 1", "Mar 2"}, labels)
}
