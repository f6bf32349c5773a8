package analytics

import "strings"

// CategoryOther is the fallback label for markets that match no keyword group.
const CategoryOther = "Other"

type keywordGroup struct {
	label    string
	keywords []string
}

// categoryGroups is evaluated in order; the first group with a matching
// keyword wins.
var categoryGroups = []keywordGroup{
	{"Politics", []string{"election", "president", "trump", "biden", "democrat", "republican"}},
	{"Crypto", []string{"bitcoin", "crypto", "ethereum", "btc", "eth", "tether"}},
	{"Sports", []string{"sport", "nfl", "nba", "soccer", "football"}},
	{"Entertainment", []string{"movie", "film", "oscar", "box office"}},
	{"Technology", []string{"ai", "artificial intelligence", "tech", "google", "apple"}},
	{"Economics", []string{"economy", "fed", "rate", "gdp", "recession"}},
}

// Categorize derives a category label for a market. The first tag label is
// authoritative when present; otherwise the lower-cased title is matched by
// substring against the keyword groups.
func Categorize(title string, tags []string) string {
	if len(tags) > 0 {
		return tags[0]
	}

	lower := strings.ToLower(title)
	for _, g := range categoryGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.label
			}
		}
	}
	return CategoryOther
}
