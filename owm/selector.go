package owm

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationSelector identifies the place a current weather lookup is for.
// The set of implementations is closed: ByName, ByID, ByCoordinates and
// ByPostalCode.
type LocationSelector interface {
	// Validate reports whether the selector can be sent upstream.
	Validate() error
	// Kind is a short label for logs and metrics.
	Kind() string

	params() []Param
}

// ByName selects a location by city name, optionally qualified by state
// and country. A state without a country is sent as "city,state".
type ByName struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
	State   string `json:"state,omitempty"`
}

func (s ByName) Validate() error {
	if strings.TrimSpace(s.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidSelector)
	}
	return nil
}

func (ByName) Kind() string { return "name" }

func (s ByName) params() []Param {
	var q string
	switch {
	case s.State != "" && s.Country != "":
		q = s.City + "," + s.State + "," + s.Country
	case s.Country != "":
		q = s.City + "," + s.Country
	case s.State != "":
		q = s.City + "," + s.State
	default:
		q = s.City
	}
	return []Param{{Key: "q", Value: q}}
}

// ByID selects a location by its OpenWeatherMap city id.
type ByID struct {
	ID int64 `json:"id"`
}

func (s ByID) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidSelector, s.ID)
	}
	return nil
}

func (ByID) Kind() string { return "id" }

func (s ByID) params() []Param {
	return []Param{{Key: "id", Value: strconv.FormatInt(s.ID, 10)}}
}

// ByCoordinates selects a location by latitude and longitude in degrees.
type ByCoordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func (s ByCoordinates) Validate() error {
	if s.Latitude < -90 || s.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidSelector, s.Latitude)
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidSelector, s.Longitude)
	}
	return nil
}

func (ByCoordinates) Kind() string { return "coordinates" }

func (s ByCoordinates) params() []Param {
	return []Param{
		{Key: "lat", Value: formatFloat(s.Latitude)},
		{Key: "lon", Value: formatFloat(s.Longitude)},
	}
}

// ByPostalCode selects a location by postal code. Without a country the
// API assumes the US.
type ByPostalCode struct {
	Code    string `json:"zip"`
	Country string `json:"country,omitempty"`
}

// PostalCode builds a ByPostalCode from a numeric code.
func PostalCode(code int, country string) ByPostalCode {
	return ByPostalCode{Code: strconv.Itoa(code), Country: country}
}

func (s ByPostalCode) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("%w: postal code is required", ErrInvalidSelector)
	}
	return nil
}

func (ByPostalCode) Kind() string { return "postal_code" }

func (s ByPostalCode) params() []Param {
	zip := s.Code
	if s.Country != "" {
		zip += "," + s.Country
	}
	return []Param{{Key: "zip", Value: zip}}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
