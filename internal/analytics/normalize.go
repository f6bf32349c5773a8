// Package analytics turns raw upstream market records into dashboard view
// models and derives the aggregate views served by the API.
package analytics

import (
	"encoding/json"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

const (
	defaultTitle      = "Untitled"
	defaultEndDateTTL = 30 * 24 * time.Hour
	endDateLayout     = "2006-01-02T15:04:05.000Z"
)

// Normalizer maps raw records onto domain.Market values.
type Normalizer struct {
	estimator *Estimator
	now       func() time.Time
	logger    *slog.Logger
}

// NormalizerOption customises a Normalizer.
type NormalizerOption func(*Normalizer)

// WithClock overrides the clock used for the default end date.
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) { n.now = now }
}

// NewNormalizer creates a Normalizer backed by the given estimator.
func NewNormalizer(est *Estimator, logger *slog.Logger, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		estimator: est,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "normalizer")),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a batch of raw records. Records without parseable
// outcome prices are dropped; malformed token id lists become empty. The
// estimator is updated once for the whole batch.
func (n *Normalizer) Normalize(raws []domain.RawMarket) []domain.Market {
	markets := make([]domain.Market, 0, len(raws))
	obs := make([]Observation, 0, len(raws))

	for i := range raws {
		raw := &raws[i]

		prices, ok := parsePrices(raw.OutcomePrices)
		if !ok {
			n.logger.Debug("malformed outcome prices", slog.String("market_id", raw.ID))
		}
		if len(prices) == 0 {
			n.logger.Debug("dropping market without prices", slog.String("market_id", raw.ID))
			continue
		}

		tokenIDs, ok := parseTokenIDs(raw.ClobTokenIDs)
		if !ok {
			n.logger.Debug("malformed token ids", slog.String("market_id", raw.ID))
		}

		m := domain.Market{
			ID:           raw.ID,
			Title:        defaultTitle,
			CurrentPrice: prices[0] * 100,
			TokenIDs:     tokenIDs,
			Prices:       prices,
			Active:       true,
		}
		if raw.Question != nil && *raw.Question != "" {
			m.Title = *raw.Question
		}
		m.Category = Categorize(stringOrEmpty(raw.Question), raw.Tags)
		if raw.Volume != nil {
			m.Volume = *raw.Volume
		}
		if raw.Liquidity != nil {
			m.Liquidity = *raw.Liquidity
		}
		if raw.Active != nil {
			m.Active = *raw.Active
		}
		if raw.EndDate != nil && *raw.EndDate != "" {
			m.EndDate = *raw.EndDate
		} else {
			m.EndDate = n.now().Add(defaultEndDateTTL).UTC().Format(endDateLayout)
		}

		markets = append(markets, m)
		obs = append(obs, Observation{ID: m.ID, Price: m.CurrentPrice})
	}

	changes := n.estimator.EstimateAll(obs)
	for i := range markets {
		markets[i].PriceChange24h = changes[i]
	}
	return markets
}

// parsePrices decodes a JSON-encoded array of prices given as decimal
// strings or numbers. Any element that does not parse to a probability in
// [0, 1] marks the whole field malformed, reported as (empty, false).
func parsePrices(field *string) ([]float64, bool) {
	elems, ok := decodeArray(field)
	if !ok {
		return []float64{}, false
	}

	prices := make([]float64, 0, len(elems))
	for _, e := range elems {
		var p float64
		switch v := e.(type) {
		case float64:
			p = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return []float64{}, false
			}
			p = f
		default:
			return []float64{}, false
		}
		if !validProbability(p) {
			return []float64{}, false
		}
		prices = append(prices, p)
	}
	return prices, true
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// parseTokenIDs decodes a JSON-encoded array of token ids. Numeric ids are
// rendered in their shortest decimal form.
func parseTokenIDs(field *string) ([]string, bool) {
	elems, ok := decodeArray(field)
	if !ok {
		return []string{}, false
	}

	ids := make([]string, 0, len(elems))
	for _, e := range elems {
		switch v := e.(type) {
		case string:
			ids = append(ids, v)
		case float64:
			ids = append(ids, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return []string{}, false
		}
	}
	return ids, true
}

// decodeArray parses an embedded JSON array. An absent or empty field is not
// malformed; it simply yields no elements.
func decodeArray(field *string) ([]any, bool) {
	if field == nil || *field == "" {
		return nil, true
	}
	var elems []any
	if err := json.Unmarshal([]byte(*field), &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
