package domain

import "time"

// RawMarket is a single upstream market record before normalization. Every
// field the upstream may omit is a pointer so defaults are applied explicitly
// by the normalizer rather than by zero-value coercion.
type RawMarket struct {
	ID            string
	Question      *string
	ClobTokenIDs  *string // JSON-encoded: e.g. "[\"123\",\"456\"]"
	OutcomePrices *string // JSON-encoded: e.g. "[\"0.5\",\"0.5\"]"
	Volume        *float64
	Liquidity     *float64
	Active        *bool
	EndDate       *string
	Tags          []string // tag labels in upstream order
}

// Market is the canonical view model served to the dashboard. A Market is
// rebuilt wholesale on every cache refresh and never mutated afterwards.
type Market struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	CurrentPrice   float64   `json:"currentPrice"`   // first outcome probability x 100
	PriceChange24h float64   `json:"priceChange24h"` // percentage
	Volume         float64   `json:"volume"`
	Liquidity      float64   `json:"liquidity"`
	TokenIDs       []string  `json:"tokenIds"`
	Prices         []float64 `json:"prices"`
	Active         bool      `json:"active"`
	EndDate        string    `json:"endDate"`
}

// Snapshot is the full normalized market list together with the time it was
// produced. Only one snapshot is live per process.
type Snapshot struct {
	Markets   []Market
	FetchedAt time.Time
}

// Age returns how long ago the snapshot was produced relative to now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}
