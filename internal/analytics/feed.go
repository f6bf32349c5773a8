package analytics

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

const (
	// DefaultFeedLimit is the number of entries in the activity feed.
	DefaultFeedLimit = 10

	feedTitle        = 50
	feedMoveWeight   = 0.7
	feedVolumeWeight = 0.3
)

// ActivityFeed ranks markets by a blend of absolute 24h move and volume and
// renders the top n as feed entries.
func ActivityFeed(markets []domain.Market, n int) []domain.FeedItem {
	ranked := slices.Clone(markets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return activityScore(ranked[i]) > activityScore(ranked[j])
	})

	top := head(ranked, n)
	items := make([]domain.FeedItem, 0, len(top))
	for i, m := range top {
		typ := domain.FeedItemVolumeSpike
		if m.PriceChange24h > 0 {
			typ = domain.FeedItemPriceChange
		}
		items = append(items, domain.FeedItem{
			ID:          m.ID,
			Type:        typ,
			Market:      truncate(m.Title, feedTitle, feedTitle),
			Description: feedDescription(m),
			Timestamp:   fmt.Sprintf("%dm ago", 2*i+1),
		})
	}
	return items
}

func activityScore(m domain.Market) float64 {
	return math.Abs(m.PriceChange24h)*feedMoveWeight + m.Volume/1e6*feedVolumeWeight
}

func feedDescription(m domain.Market) string {
	volume := fmt.Sprintf("$%.0fk volume", roundHalfUp(m.Volume/1000))
	if math.Abs(m.PriceChange24h) > 1 {
		dir := "Up"
		if m.PriceChange24h < 0 {
			dir = "Down"
		}
		return fmt.Sprintf("%s %.1f%% • %s", dir, round1(math.Abs(m.PriceChange24h)), volume)
	}
	return "Active trading: " + volume
}
