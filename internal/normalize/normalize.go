// Package normalize coerces heterogeneous property records from external
// feeds into the canonical model. The wire contract is not enforced by the
// data source, so every field is coerced defensively: parse failures become
// zero values, never errors.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmcloughlin/geohash"

	"propertybw/internal/model"
)

// Gaborone city centre, used when demo coordinates are requested for
// records without geocoding.
const (
	DemoCenterLat = -24.6282
	DemoCenterLng = 25.9231
)

// Options controls optional normalization behavior.
type Options struct {
	// DemoCoordinates assigns deterministic coordinates near the Gaborone
	// centre to records without a valid location, for map demos.
	DemoCoordinates bool
}

// ValidCoordinate reports whether lat/lng describe a plottable location.
// Zero is the "missing" sentinel and out-of-range values are rejected.
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	if lat == 0 || lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Property coerces a raw record into a canonical Property. index is used
// for the fallback title when the record has none. The function never
// fails; malformed fields degrade to defaults.
func Property(raw map[string]any, index int, opts Options) model.Property {
	p := model.Property{
		Title:        asString(raw["title"]),
		Description:  asString(raw["description"]),
		Price:        asFloat(raw["price"]),
		Currency:     asString(raw["currency"]),
		Location:     asString(raw["location"]),
		City:         asString(raw["city"]),
		PropertyType: strings.ToLower(asString(raw["property_type"])),
		ListingType:  strings.ToLower(asString(raw["listing_type"])),
		Bedrooms:     asInt(raw["bedrooms"]),
		Bathrooms:    asInt(raw["bathrooms"]),
		Status:       asString(raw["status"]),
	}

	p.ID = asInt64(firstPresent(raw, "id", "listing_id"))

	if p.Title == "" {
		p.Title = fmt.Sprintf("Property %d", index+1)
	}
	if p.Location == "" {
		p.Location = asString(raw["address"])
	}
	if p.Currency == "" {
		p.Currency = "BWP"
	}
	if !model.ValidPropertyType(p.PropertyType) {
		p.PropertyType = model.TypeHouse
	}
	if !model.ValidListingType(p.ListingType) {
		p.ListingType = model.ListingAgent
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Bedrooms < 0 {
		p.Bedrooms = 0
	}
	if p.Bathrooms < 0 {
		p.Bathrooms = 0
	}

	if area := asFloat(firstPresent(raw, "area_sqm", "square_footage", "sqm")); area > 0 {
		p.AreaSqm = &area
	}
	if img := asString(firstPresent(raw, "image_url", "image")); img != "" {
		p.ImageURL = &img
	}
	if feats := asStringSlice(raw["features"]); len(feats) > 0 {
		p.Features = feats
	}
	if listed := asTime(raw["listed_date"]); listed != nil {
		p.ListedDate = listed
	}

	lat := asFloat(firstPresent(raw, "latitude", "lat"))
	lng := asFloat(firstPresent(raw, "longitude", "lng", "lon"))
	if ValidCoordinate(lat, lng) {
		setCoordinates(&p, lat, lng)
	} else if opts.DemoCoordinates {
		demoLat, demoLng := demoCoordinate(p.ID, index)
		setCoordinates(&p, demoLat, demoLng)
	}

	return p
}

func setCoordinates(p *model.Property, lat, lng float64) {
	p.Latitude = &lat
	p.Longitude = &lng
	gh := geohash.Encode(lat, lng)
	p.Geohash = &gh
}

// demoCoordinate spreads records deterministically within roughly 5km of
// the city centre so repeated imports plot the same point.
func demoCoordinate(id int64, index int) (float64, float64) {
	seed := id
	if seed == 0 {
		seed = int64(index + 1)
	}
	latOff := float64(seed%100)/100*0.09 - 0.045
	lngOff := float64((seed/100)%100)/100*0.09 - 0.045
	return DemoCenterLat + latOff, DemoCenterLng + lngOff
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	}
	return ""
}

// asFloat parses numbers and numeric strings. Currency strings such as
// "P 1,200,000" or "BWP 850000" are accepted.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "BWP")
		s = strings.TrimPrefix(s, "P")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	}
	return 0
}

func asInt(v any) int {
	return int(asFloat(v))
}

func asInt64(v any) int64 {
	return int64(asFloat(v))
}

func asStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str := asString(item); str != "" {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func asTime(v any) *time.Time {
	s := asString(v)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
