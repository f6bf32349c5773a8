package domain

// TopMovers holds the largest positive and negative 24h movers.
type TopMovers struct {
	Gainers []Market `json:"gainers"`
	Losers  []Market `json:"losers"`
}

// CategoryData is one slice of the category breakdown chart.
type CategoryData struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// LeaderboardItem is one row of the liquidity leaderboard. Liquidity is
// expressed in thousands of USD.
type LeaderboardItem struct {
	Market    string  `json:"market"`
	Liquidity float64 `json:"liquidity"`
}

// PricePoint is a single labelled price on a history chart.
type PricePoint struct {
	Timestamp string  `json:"timestamp"`
	Price     float64 `json:"price"`
}

// MarketHistory is a price series plus the derived momentum score.
type MarketHistory struct {
	Data          []PricePoint `json:"data"`
	MomentumScore float64      `json:"momentumScore"`
}

// FeedItemType classifies an activity feed entry.
type FeedItemType string

const (
	FeedItemPriceChange FeedItemType = "price_change"
	FeedItemVolumeSpike FeedItemType = "volume_spike"
)

// FeedItem is one entry of the live activity feed.
type FeedItem struct {
	ID          string       `json:"id"`
	Type        FeedItemType `json:"type"`
	Market      string       `json:"market"`
	Description string       `json:"description"`
	Timestamp   string       `json:"timestamp"`
}
