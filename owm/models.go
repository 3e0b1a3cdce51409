package owm

import "time"

// Coordinates of the observed location in degrees.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Conditions is the primary weather condition group and its description.
type Conditions struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// Measurements holds temperatures (in the requested unit system),
// pressures in hPa and humidity in percent.
type Measurements struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Pressure    int     `json:"pressure"`
	Humidity    int     `json:"humidity"`
	SeaLevel    *int    `json:"seaLevel,omitempty"`
	GroundLevel *int    `json:"groundLevel,omitempty"`
}

type Wind struct {
	Speed  *float64 `json:"speed,omitempty"`
	Degree *int     `json:"degree,omitempty"`
	Gust   *float64 `json:"gust,omitempty"`
}

// Precipitation volume in mm for the last one and three hours.
type Precipitation struct {
	LastHour   *float64 `json:"lastHour,omitempty"`
	Last3Hours *float64 `json:"last3Hours,omitempty"`
}

type System struct {
	Country string `json:"country,omitempty"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
}

// WeatherRecord is a normalized current weather observation.
// Optional substructures are nil when the upstream omitted them.
type WeatherRecord struct {
	Coordinates           Coordinates    `json:"coordinates"`
	Conditions            Conditions     `json:"conditions"`
	Measurements          Measurements   `json:"measurements"`
	Visibility            int            `json:"visibility"`
	Wind                  *Wind          `json:"wind,omitempty"`
	Clouds                int            `json:"clouds"`
	Rain                  *Precipitation `json:"rain,omitempty"`
	Snow                  *Precipitation `json:"snow,omitempty"`
	System                System         `json:"system"`
	ObservedAt            int64          `json:"observedAt"`
	TimezoneOffsetSeconds int            `json:"timezoneOffsetSeconds"`
	LocationID            int64          `json:"locationId"`
	LocationName          string         `json:"locationName"`
}

// Zone returns the fixed time zone reported for the location.
func (r *WeatherRecord) Zone() *time.Location {
	return time.FixedZone(r.LocationName, r.TimezoneOffsetSeconds)
}

func (r *WeatherRecord) ObservedTime() time.Time {
	return time.Unix(r.ObservedAt, 0).In(r.Zone())
}

func (r *WeatherRecord) SunriseTime() time.Time {
	return time.Unix(r.System.Sunrise, 0).In(r.Zone())
}

func (r *WeatherRecord) SunsetTime() time.Time {
	return time.Unix(r.System.Sunset, 0).In(r.Zone())
}

// Result is the outcome of a lookup that reached the upstream. Exactly
// one field is set: Record for a normalized success, Raw for a success
// requested with OutputRaw, Failure when the upstream reported an error.
type Result struct {
	Record  *WeatherRecord
	Raw     map[string]any
	Failure *APIError
}

// OK reports whether the upstream accepted the lookup.
func (r Result) OK() bool {
	return r.Failure == nil
}
