package analytics

import (
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/alanyoungcy/polymarketdash/internal/domain"
)

const (
	// DefaultMoversLimit is the length of each side of the top movers view.
	DefaultMoversLimit = 10
	// DefaultLeaderboardLimit is the number of leaderboard rows.
	DefaultLeaderboardLimit = 5

	maxCategories     = 6
	leaderboardTitle  = 60
	leaderboardCutoff = 57
)

// chartPalette is assigned to category entries cyclically by position.
var chartPalette = []string{
	"hsl(var(--chart-1))",
	"hsl(var(--chart-2))",
	"hsl(var(--chart-3))",
	"hsl(var(--chart-4))",
	"hsl(var(--chart-5))",
	"hsl(var(--chart-6))",
}

// TopMovers returns the n largest gainers (descending) and the n largest
// losers (ascending) by 24h change. Ties keep input order. The input slice
// is not reordered.
func TopMovers(markets []domain.Market, n int) domain.TopMovers {
	gainers := slices.Clone(markets)
	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].PriceChange24h > gainers[j].PriceChange24h
	})

	losers := slices.Clone(markets)
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].PriceChange24h < losers[j].PriceChange24h
	})

	return domain.TopMovers{
		Gainers: head(gainers, n),
		Losers:  head(losers, n),
	}
}

// CategoryBreakdown counts markets per category, keeps the six largest and
// folds the remainder into "Other". Colors follow final position.
func CategoryBreakdown(markets []domain.Market) []domain.CategoryData {
	counts := make(map[string]int)
	var order []string
	for _, m := range markets {
		if _, seen := counts[m.Category]; !seen {
			order = append(order, m.Category)
		}
		counts[m.Category]++
	}

	// Stable on first-seen order so equal counts render deterministically.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	top := head(order, maxCategories)
	remainder := 0
	for _, name := range order[len(top):] {
		remainder += counts[name]
	}

	out := make([]domain.CategoryData, 0, len(top)+1)
	otherIdx := -1
	for i, name := range top {
		if name == CategoryOther {
			otherIdx = i
		}
		out = append(out, domain.CategoryData{Name: name, Value: counts[name]})
	}

	if remainder > 0 {
		if otherIdx >= 0 {
			out[otherIdx].Value += remainder
		} else {
			out = append(out, domain.CategoryData{Name: CategoryOther, Value: remainder})
		}
	}

	for i := range out {
		out[i].Color = chartPalette[i%len(chartPalette)]
	}
	return out
}

// LiquidityLeaderboard returns the n most liquid markets with titles capped
// at 60 characters and liquidity expressed in thousands.
func LiquidityLeaderboard(markets []domain.Market, n int) []domain.LeaderboardItem {
	sorted := slices.Clone(markets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Liquidity > sorted[j].Liquidity
	})

	top := head(sorted, n)
	out := make([]domain.LeaderboardItem, 0, len(top))
	for _, m := range top {
		out = append(out, domain.LeaderboardItem{
			Market:    truncate(m.Title, leaderboardTitle, leaderboardCutoff),
			Liquidity: roundHalfUp(m.Liquidity / 1000),
		})
	}
	return out
}

// Filter narrows markets to an exact category and a case-insensitive title
// substring. Empty arguments match everything.
func Filter(markets []domain.Market, category, query string) []domain.Market {
	if category == "" && query == "" {
		return markets
	}

	q := strings.ToLower(query)
	out := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if category != "" && m.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Title), q) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// truncate shortens s to cutoff runes plus "..." when it is longer than max
// runes.
func truncate(s string, max, cutoff int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:cutoff]) + "..."
}

func head[T any](s []T, n int) []T {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[:n]
}
