// Package geocode turns free-form addresses into coordinates so they can
// be looked up with owm.ByCoordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/owm-current-weather/owm"
)

var ErrNoAddress = errors.New("address is required")

// Address is the part of a postal address a caller knows.
type Address struct {
	Street  string
	City    string
	State   string
	Country string
	Zip     string
}

func (a Address) empty() bool {
	return strings.TrimSpace(a.Street+a.City+a.State+a.Country+a.Zip) == ""
}

type Resolver interface {
	Resolve(ctx context.Context, addr Address) (owm.ByCoordinates, error)
}

// GoogleResolver uses the Google Geocoding API through kelvins/geocoder.
type GoogleResolver struct{}

// NewGoogleResolver sets the package-wide geocoder key. Only one key can
// be active per process.
func NewGoogleResolver(apiKey string) *GoogleResolver {
	geocoder.ApiKey = apiKey
	return &GoogleResolver{}
}

func (r *GoogleResolver) Resolve(ctx context.Context, addr Address) (owm.ByCoordinates, error) {
	if addr.empty() {
		return owm.ByCoordinates{}, ErrNoAddress
	}
	if err := ctx.Err(); err != nil {
		return owm.ByCoordinates{}, err
	}

	loc, err := geocoder.Geocoding(geocoder.Address{
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		Country:    addr.Country,
		PostalCode: addr.Zip,
	})
	if err != nil {
		return owm.ByCoordinates{}, fmt.Errorf("geocode %q: %w", addr.Street, err)
	}
	return owm.ByCoordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}
