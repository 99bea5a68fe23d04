package model

import (
	"fmt"
	"strconv"
)

// Sentinel values for filter dimensions that are not constrained.
const (
	FilterAll = "all"
	FilterAny = "any"
)

// DefaultPriceCeiling bounds the default price range. Prices are in BWP.
const DefaultPriceCeiling = 10_000_000

// FilterState is a snapshot of the search filters. Filters compose via
// logical AND. "all"/"any" mean the dimension is unconstrained.
type FilterState struct {
	SearchTerm   string     `json:"search_term,omitempty"`
	PriceRange   [2]float64 `json:"price_range"`
	PropertyType string     `json:"property_type"`
	Bedrooms     string     `json:"bedrooms"`
	Bathrooms    string     `json:"bathrooms"`
	ListingType  string     `json:"listing_type"`
}

// DefaultFilters returns the filter state a fresh page session starts with.
func DefaultFilters() FilterState {
	return FilterState{
		PriceRange:   [2]float64{0, DefaultPriceCeiling},
		PropertyType: FilterAll,
		Bedrooms:     FilterAny,
		Bathrooms:    FilterAny,
		ListingType:  FilterAll,
	}
}

// Validate checks enum values and the price range. External input (query
// params, AI payloads, saved-search bodies) goes through here before it can
// touch the engine.
func (f *FilterState) Validate() error {
	if f.PriceRange[0] < 0 || f.PriceRange[1] < 0 {
		return fmt.Errorf("price range must be non-negative")
	}
	if f.PriceRange[0] > f.PriceRange[1] {
		return fmt.Errorf("price range low (%g) exceeds high (%g)", f.PriceRange[0], f.PriceRange[1])
	}
	if f.PropertyType != FilterAll && !ValidPropertyType(f.PropertyType) {
		return fmt.Errorf("unknown property type %q", f.PropertyType)
	}
	if f.ListingType != FilterAll && !ValidListingType(f.ListingType) {
		return fmt.Errorf("unknown listing type %q", f.ListingType)
	}
	if _, ok := minCount(f.Bedrooms); f.Bedrooms != FilterAny && !ok {
		return fmt.Errorf("bedrooms must be %q or a count, got %q", FilterAny, f.Bedrooms)
	}
	if _, ok := minCount(f.Bathrooms); f.Bathrooms != FilterAny && !ok {
		return fmt.Errorf("bathrooms must be %q or a count, got %q", FilterAny, f.Bathrooms)
	}
	return nil
}

// MinBedrooms returns the bedroom threshold, or ok=false when unconstrained.
func (f *FilterState) MinBedrooms() (int, bool) {
	if f.Bedrooms == FilterAny {
		return 0, false
	}
	return minCount(f.Bedrooms)
}

// MinBathrooms returns the bathroom threshold, or ok=false when unconstrained.
func (f *FilterState) MinBathrooms() (int, bool) {
	if f.Bathrooms == FilterAny {
		return 0, false
	}
	return minCount(f.Bathrooms)
}

func minCount(s string) (int, bool) {
	if s == "" || s == FilterAny {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// AIFilterPayload is the structured filter fragment the query interpreter
// returns. Every field is optional: nil means "the query said nothing about
// this dimension".
type AIFilterPayload struct {
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	MinBedrooms  *int     `json:"min_bedrooms,omitempty"`
	MinBathrooms *int     `json:"min_bathrooms,omitempty"`
	ListingType  *string  `json:"listing_type,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
}

// MergeAIFilters overlays an interpreted payload on the current filter
// state. Explicit payload fields override; unspecified fields retain the
// current value.
func MergeAIFilters(current FilterState, p *AIFilterPayload) FilterState {
	merged := current
	if p == nil {
		return merged
	}
	if p.MinPrice != nil {
		merged.PriceRange[0] = *p.MinPrice
	}
	if p.MaxPrice != nil {
		merged.PriceRange[1] = *p.MaxPrice
	}
	if p.PropertyType != nil {
		merged.PropertyType = *p.PropertyType
	}
	if p.MinBedrooms != nil {
		merged.Bedrooms = strconv.Itoa(*p.MinBedrooms)
	}
	if p.MinBathrooms != nil {
		merged.Bathrooms = strconv.Itoa(*p.MinBathrooms)
	}
	if p.ListingType != nil {
		merged.ListingType = *p.ListingType
	}
	return merged
}
