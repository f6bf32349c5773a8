package analytics

import (
	"math"
	"time"
	"unicode/utf16"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

const (
	// DefaultHistoryDays is used when the caller does not ask for a range.
	DefaultHistoryDays = 7

	historyLabelLayout = "Jan 2"
	historyFloor       = 5
	historyCeiling     = 95
	maxDailyVariation  = 0.08
)

// History generates a deterministic synthetic price series of days+1 points
// ending at the market's current price, labelled backwards from now, plus a
// momentum score. The series depends only on the market id, current price
// and volume, so a real time-series source can replace it behind the same
// signature.
func History(m domain.Market, days int, now time.Time) domain.MarketHistory {
	if days < 0 {
		days = 0
	}

	seed := idSeed(m.ID)
	seededRandom := func(i int) float64 {
		return frac(math.Sin(seed*float64(i+1)) * 10000)
	}

	points := make([]domain.PricePoint, 0, days+1)
	prev := m.CurrentPrice
	for i := days; i >= 0; i-- {
		price := m.CurrentPrice
		if i != 0 {
			variation := (seededRandom(i) - 0.5) * maxDailyVariation
			price = clamp(prev+prev*variation, historyFloor, historyCeiling)
		}
		points = append(points, domain.PricePoint{
			Timestamp: now.AddDate(0, 0, -i).Format(historyLabelLayout),
			Price:     round1(price),
		})
		prev = price
	}

	first := points[0].Price
	last := points[len(points)-1].Price
	volumeWeight := math.Log10(m.Volume+1) / 10

	return domain.MarketHistory{
		Data:          points,
		MomentumScore: round1((last-first)*0.7 + volumeWeight*30),
	}
}

// idSeed sums the UTF-16 code units of id.
func idSeed(id string) float64 {
	var sum int
	for _, u := range utf16.Encode([]rune(id)) {
		sum += int(u)
	}
	return float64(sum)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
