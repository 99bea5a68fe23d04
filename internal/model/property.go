package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Property type values recognised by the marketplace.
const (
	TypeHouse      = "house"
	TypeApartment  = "apartment"
	TypeTownhouse  = "townhouse"
	TypeCommercial = "commercial"
	TypeFarm       = "farm"
	TypeLand       = "land"
)

// Listing type values: posted by an agent, or for sale by owner.
const (
	ListingAgent = "agent"
	ListingOwner = "owner"
)

// Property represents a canonical property listing. Optional numeric fields
// are pointers so that "missing" survives the trip through the database and
// the JSON API; required fields are already coerced by the normalizer.
type Property struct {
	ID           int64           `json:"id" db:"id"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description,omitempty" db:"description"`
	Price        float64         `json:"price" db:"price"`
	Currency     string          `json:"currency,omitempty" db:"currency"`
	Location     string          `json:"location" db:"location"`
	City         string          `json:"city,omitempty" db:"city"`
	PropertyType string          `json:"property_type" db:"property_type"`
	ListingType  string          `json:"listing_type" db:"listing_type"`
	Bedrooms     int             `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int             `json:"bathrooms" db:"bathrooms"`
	AreaSqm      *float64        `json:"area_sqm,omitempty" db:"area_sqm"`
	ImageURL     *string         `json:"image_url,omitempty" db:"image_url"`
	Features     JSONArray       `json:"features,omitempty" db:"features"`
	Latitude     *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64        `json:"longitude,omitempty" db:"longitude"`
	Geohash      *string         `json:"geohash,omitempty" db:"geohash"`
	Status       string          `json:"status" db:"status"`
	ListedDate   *time.Time      `json:"listed_date,omitempty" db:"listed_date"`
	Embedding    pgvector.Vector `json:"-" db:"embedding"`
	TextRank     *float64        `json:"-" db:"text_rank"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// HasValidCoordinates reports whether the property can be plotted on a map.
// (0,0) is the "missing" sentinel, not a real location.
func (p *Property) HasValidCoordinates() bool {
	if p.Latitude == nil || p.Longitude == nil {
		return false
	}
	lat, lng := *p.Latitude, *p.Longitude
	if lat == 0 || lng == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// JSONArray represents a JSON array column (property features)
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}

// ValidPropertyType reports whether t is a known property type.
func ValidPropertyType(t string) bool {
	switch t {
	case TypeHouse, TypeApartment, TypeTownhouse, TypeCommercial, TypeFarm, TypeLand:
		return true
	}
	return false
}

// ValidListingType reports whether t is a known listing type.
func ValidListingType(t string) bool {
	return t == ListingAgent || t == ListingOwner
}
