package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

func TestActivityFeed(t *testing.T) {
	markets := []domain.Market{
		{ID: "quiet", Title: "Quiet market", PriceChange24h: 0.5, Volume: 10_000},
		{ID: "up", Title: "Rising market", PriceChange24h: 4.25, Volume: 250_400},
		{ID: "down", Title: strings.Repeat("z", 55), PriceChange24h: -6, Volume: 1_000_000},
		{ID: "whale", Title: "Heavy volume", PriceChange24h: 0, Volume: 20_000_000},
	}

	got := ActivityFeed(markets, DefaultFeedLimit)

	require.Len(t, got, 4)
	assert.Equal(t, domain.FeedItem{
		ID:          "whale",
		Type:        domain.FeedItemVolumeSpike,
		Market:      "Heavy volume",
		Description: "Active trading: $20000k volume",
		Timestamp:   "1m ago",
	}, got[0])
	assert.Equal(t, domain.FeedItem{
		ID:          "down",
		Type:        domain.FeedItemVolumeSpike,
		Market:      strings.Repeat("z", 50) + "...",
		Description: "Down 6.0% • $1000k volume",
		Timestamp:   "3m ago",
	}, got[1])
	assert.Equal(t, domain.FeedItem{
		ID:          "up",
		Type:        domain.FeedItemPriceChange,
		Market:      "Rising market",
		Description: "Up 4.3% • $250k volume",
		Timestamp:   "5m ago",
	}, got[2])
	assert.Equal(t, "quiet", got[3].ID)
	assert.Equal(t, domain.FeedItemPriceChange, got[3].Type)
	assert.Equal(t, "Active trading: $10k volume", got[3].Description)
	assert.Equal(t, "7m ago", got[3].Timestamp)
}

func TestActivityFeed_Limit(t *testing.T) {
	markets := make([]domain.Market, 15)
	assert.Len(t, ActivityFeed(markets, DefaultFeedLimit), 10)
	assert.Empty(t, ActivityFeed(nil, DefaultFeedLimit))
}
