// Package search implements the property search pipeline: the pure
// filter/sort engine, the query resolver with its AI path and local
// fallback, and the suggestion source.
package search

import (
	"sort"
	"strings"

	"propertybw/internal/model"
)

// Sort keys accepted by ApplySort.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortSize      = "size"
	SortBedrooms  = "bedrooms"
)

// ValidSortKey reports whether key is one of the five supported orders.
func ValidSortKey(key string) bool {
	switch key {
	case SortNewest, SortPriceLow, SortPriceHigh, SortSize, SortBedrooms:
		return true
	}
	return false
}

// ApplyFilters keeps the properties satisfying every filter dimension.
// Predicates compose via logical AND and short-circuit on the first
// failure. The input slice is never mutated.
func ApplyFilters(properties []model.Property, f model.FilterState) []model.Property {
	out := make([]model.Property, 0, len(properties))
	for _, p := range properties {
		if matches(&p, &f) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p *model.Property, f *model.FilterState) bool {
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Location), term) {
			return false
		}
	}
	if f.PropertyType != model.FilterAll && p.PropertyType != f.PropertyType {
		return false
	}
	if f.ListingType != model.FilterAll && p.ListingType != f.ListingType {
		return false
	}
	if p.Price < f.PriceRange[0] || p.Price > f.PriceRange[1] {
		return false
	}
	if min, ok := f.MinBedrooms(); ok && p.Bedrooms < min {
		return false
	}
	if min, ok := f.MinBathrooms(); ok && p.Bathrooms < min {
		return false
	}
	return true
}

// ApplySort returns a new slice ordered by the given key. The order is
// stable and the input is never mutated. Unknown keys fall back to source
// order, which is the "newest" contract (listings arrive newest first).
func ApplySort(properties []model.Property, sortBy string) []model.Property {
	out := make([]model.Property, len(properties))
	copy(out, properties)

	switch sortBy {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortSize:
		sort.SliceStable(out, func(i, j int) bool { return areaOrZero(&out[i]) > areaOrZero(&out[j]) })
	case SortBedrooms:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Bedrooms > out[j].Bedrooms })
	}
	return out
}

func areaOrZero(p *model.Property) float64 {
	if p.AreaSqm == nil {
		return 0
	}
	return *p.AreaSqm
}

// LocalMatch performs the substring fallback search across title,
// description, location, and city, case-insensitively.
func LocalMatch(properties []model.Property, query string) []model.Property {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []model.Property{}
	}
	out := make([]model.Property, 0)
	for _, p := range properties {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Location), q) ||
			strings.Contains(strings.ToLower(p.City), q) {
			out = append(out, p)
		}
	}
	return out
}
