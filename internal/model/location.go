package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Location is a fishing venue. Locations are administered out of band; the
// API only reads them.
type Location struct {
	ID           uint64          `json:"id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	Description  *string         `json:"description,omitempty"`
	PricePerHour decimal.Decimal `json:"price_per_hour"`
	ImageURL     *string         `json:"image_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LocationSpot is a named bookable seat at a location, e.g. "A1".
type LocationSpot struct {
	ID         uint64 `json:"id"`
	LocationID uint64 `json:"id_location"`
	Name       string `json:"spot_name"`
}

// LocationImage is an additional picture of a location.
type LocationImage struct {
	ID         uint64 `json:"id"`
	LocationID uint64 `json:"id_location"`
	ImageURL   string `json:"image_url"`
}

// LocationDetail bundles a location with its spots and images.
type LocationDetail struct {
	Location
	Spots  []LocationSpot  `json:"spots"`
	Images []LocationImage `json:"images"`
}
