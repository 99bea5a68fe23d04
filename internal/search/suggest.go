package search

import (
	"context"
	"strings"

	"propertybw/internal/model"
)

// locations seeds the autocomplete with the towns and suburbs the
// marketplace covers.
var locations = []string{
	"Gaborone", "Francistown", "Maun", "Kasane", "Palapye", "Serowe",
	"Lobatse", "Molepolole", "Mahalapye", "Mogoditshane", "Tlokweng",
	"Phakalane", "Broadhurst", "Mmopane", "Ramotswa", "Kanye",
}

var propertyTerms = []string{
	model.TypeHouse, model.TypeApartment, model.TypeTownhouse,
	model.TypeCommercial, model.TypeFarm, model.TypeLand,
}

// RecentSource supplies a device's recent searches, most recent first.
type RecentSource interface {
	List(ctx context.Context, deviceID string) ([]string, error)
}

// Suggester produces search-bar suggestions from the device's recent
// searches plus known locations and property terms.
type Suggester struct {
	recents RecentSource
	limit   int
}

// NewSuggester creates a suggester. recents may be nil.
func NewSuggester(recents RecentSource, limit int) *Suggester {
	if limit <= 0 {
		limit = 8
	}
	return &Suggester{recents: recents, limit: limit}
}

// Suggest returns up to limit suggestions for the prefix q. Recent searches
// rank first, then prefix matches, then substring matches.
func (s *Suggester) Suggest(ctx context.Context, deviceID, q string) []string {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]string, 0, s.limit)
	seen := make(map[string]bool)

	add := func(candidate string) bool {
		key := strings.ToLower(candidate)
		if seen[key] {
			return len(out) < s.limit
		}
		seen[key] = true
		out = append(out, candidate)
		return len(out) < s.limit
	}

	if s.recents != nil && deviceID != "" {
		// Best effort: suggestion quality degrades without recents, the
		// endpoint does not.
		if recent, err := s.recents.List(ctx, deviceID); err == nil {
			for _, r := range recent {
				if q == "" || strings.Contains(strings.ToLower(r), q) {
					if !add(r) {
						return out
					}
				}
			}
		}
	}

	if q == "" {
		return out
	}

	candidates := make([]string, 0, len(locations)+len(propertyTerms))
	candidates = append(candidates, locations...)
	candidates = append(candidates, propertyTerms...)

	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), q) {
			if !add(c) {
				return out
			}
		}
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), q) {
			if !add(c) {
				return out
			}
		}
	}
	return out
}
