package normalize

import (
	"testing"
)

func TestValidCoordinate(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"zero sentinel", 0, 0, false},
		{"gaborone", -24.63, 25.92, true},
		{"latitude out of range", 91, 25, false},
		{"longitude out of range", -24, 181, false},
		{"zero latitude only", 0, 25.92, false},
		{"southern hemisphere edge", -90, 180, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCoordinate(tt.lat, tt.lng); got != tt.want {
				t.Errorf("ValidCoordinate(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestProperty_StringCoercion(t *testing.T) {
	raw := map[string]any{
		"id":        "42",
		"title":     "Family home in Phakalane",
		"price":     "P 1,250,000",
		"latitude":  "-24.63",
		"longitude": "25.92",
		"bedrooms":  float64(3),
		"bathrooms": "2",
	}

	p := Property(raw, 0, Options{})

	if p.ID != 42 {
		t.Errorf("ID = %d, want 42", p.ID)
	}
	if p.Price != 1250000 {
		t.Errorf("Price = %v, want 1250000", p.Price)
	}
	if p.Bedrooms != 3 || p.Bathrooms != 2 {
		t.Errorf("Bedrooms/Bathrooms = %d/%d, want 3/2", p.Bedrooms, p.Bathrooms)
	}
	if !p.HasValidCoordinates() {
		t.Fatal("expected coordinates to be valid after string coercion")
	}
	if p.Geohash == nil || *p.Geohash == "" {
		t.Error("expected geohash for valid coordinates")
	}
}

func TestProperty_Defaults(t *testing.T) {
	p := Property(map[string]any{}, 4, Options{})

	if p.Title != "Property 5" {
		t.Errorf("Title = %q, want fallback \"Property 5\"", p.Title)
	}
	if p.Price != 0 {
		t.Errorf("Price = %v, want 0", p.Price)
	}
	if p.PropertyType == "" || p.ListingType == "" {
		t.Error("expected property and listing type defaults")
	}
	if p.Currency != "BWP" {
		t.Errorf("Currency = %q, want BWP", p.Currency)
	}
	if p.Status != "active" {
		t.Errorf("Status = %q, want active", p.Status)
	}
	if p.HasValidCoordinates() {
		t.Error("record without coordinates must not be plottable")
	}
}

func TestProperty_ZeroCoordinatesTreatedAsAbsent(t *testing.T) {
	raw := map[string]any{
		"title":     "Plot in Tlokweng",
		"latitude":  float64(0),
		"longitude": float64(0),
	}

	p := Property(raw, 0, Options{})
	if p.Latitude != nil || p.Longitude != nil {
		t.Error("(0,0) must be treated as missing, not a real location")
	}
}

func TestProperty_DemoCoordinates(t *testing.T) {
	raw := map[string]any{"id": float64(7), "title": "No geocode"}

	p := Property(raw, 0, Options{DemoCoordinates: true})
	q := Property(raw, 0, Options{DemoCoordinates: true})

	if !p.HasValidCoordinates() {
		t.Fatal("demo coordinates should be valid")
	}
	if *p.Latitude != *q.Latitude || *p.Longitude != *q.Longitude {
		t.Error("demo coordinates must be deterministic per record")
	}
	if *p.Latitude > -24 || *p.Latitude < -25 {
		t.Errorf("demo latitude %v not near Gaborone", *p.Latitude)
	}
}

func TestProperty_MalformedNumbersNeverPanic(t *testing.T) {
	raw := map[string]any{
		"price":     "call agent",
		"latitude":  "north",
		"longitude": []any{1, 2},
		"bedrooms":  nil,
		"features":  []any{"pool", 3, "borehole"},
	}

	p := Property(raw, 1, Options{})
	if p.Price != 0 {
		t.Errorf("unparseable price should coerce to 0, got %v", p.Price)
	}
	if p.HasValidCoordinates() {
		t.Error("unparseable coordinates must be absent")
	}
	if len(p.Features) != 2 {
		t.Errorf("Features = %v, want the two string entries", p.Features)
	}
}
