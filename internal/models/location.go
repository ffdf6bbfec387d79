package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Coordinate is a point on the globe in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Validate checks that the coordinate is within the valid lat/lon ranges
func (c Coordinate) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid coordinate (%.4f, %.4f): %w", c.Latitude, c.Longitude, err)
	}
	return nil
}

// String formats the coordinate for display
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Location is a named place resolved by geocoding, geolocation or a favorite
type Location struct {
	Name       string // Canonical name, also the favorites key
	Country    string // Display only, may be empty
	Coordinate Coordinate
}

// DisplayName returns "Name, Country" when the country is known
func (l Location) DisplayName() string {
	if l.Country == "" {
		return l.Name
	}
	return fmt.Sprintf("%s, %s", l.Name, l.Country)
}

// FavoriteEntry is a saved location, unique by Name
type FavoriteEntry struct {
	Name       string     `json:"name"`
	Coordinate Coordinate `json:"coordinate"`
}

// Location converts the favorite back into a Location
func (f FavoriteEntry) Location() Location {
	return Location{Name: f.Name, Coordinate: f.Coordinate}
}

// Suggestion is a geocoding candidate offered while the user types
type Suggestion struct {
	Name    string
	Country string
}

// String formats the suggestion as "Name, Country"
func (s Suggestion) String() string {
	if s.Country == "" {
		return s.Name
	}
	return fmt.Sprintf("%s, %s", s.Name, s.Country)
}
