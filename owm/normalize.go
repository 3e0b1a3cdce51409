package owm

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Normalize converts a decoded current weather payload into a Result.
// A non-success status becomes Result.Failure; a success payload whose
// shape does not match returns a *NormalizationError. Optional
// substructures that are absent (or null) are left nil.
func Normalize(payload map[string]any) (Result, error) {
	failure, err := checkStatus(payload)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Failure: failure}, nil
	}

	rec, err := extract(payload)
	if err != nil {
		return Result{}, err
	}
	return Result{Record: rec}, nil
}

// checkStatus returns a non-nil *APIError when the payload's cod is not
// 200, either as a number or as a numeric string.
func checkStatus(payload map[string]any) (*APIError, error) {
	raw, ok := payload["cod"]
	if !ok || raw == nil {
		return nil, &NormalizationError{Field: "cod", Reason: "missing"}
	}

	var code int64
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, &NormalizationError{Field: "cod", Reason: fmt.Sprintf("not a status code: %q", v)}
		}
		code = n
	default:
		n, ok := toInt(v)
		if !ok {
			return nil, &NormalizationError{Field: "cod", Reason: fmt.Sprintf("unexpected type %T", raw)}
		}
		code = n
	}

	if code == http.StatusOK {
		return nil, nil
	}

	var msg string
	switch m := payload["message"].(type) {
	case nil:
	case string:
		msg = m
	default:
		msg = fmt.Sprint(m)
	}
	return &APIError{Code: int(code), Message: msg}, nil
}

func extract(payload map[string]any) (*WeatherRecord, error) {
	x := &extractor{}

	coord := x.object(payload, "", "coord")
	main := x.object(payload, "", "main")
	weather := x.first(payload, "weather")
	clouds := x.object(payload, "", "clouds")
	sys := x.object(payload, "", "sys")

	rec := &WeatherRecord{
		Coordinates: Coordinates{
			Longitude: x.float(coord, "coord", "lon"),
			Latitude:  x.float(coord, "coord", "lat"),
		},
		Conditions: Conditions{
			Main:        x.str(weather, "weather[0]", "main"),
			Description: x.str(weather, "weather[0]", "description"),
		},
		Measurements: Measurements{
			Temperature: x.float(main, "main", "temp"),
			FeelsLike:   x.float(main, "main", "feels_like"),
			Min:         x.float(main, "main", "temp_min"),
			Max:         x.float(main, "main", "temp_max"),
			Pressure:    int(x.integer(main, "main", "pressure")),
			Humidity:    int(x.integer(main, "main", "humidity")),
			SeaLevel:    x.optInt(main, "main", "sea_level"),
			GroundLevel: x.optInt(main, "main", "grnd_level"),
		},
		Visibility: int(x.integer(payload, "", "visibility")),
		Clouds:     int(x.integer(clouds, "clouds", "all")),
		System: System{
			Country: x.optStr(sys, "sys", "country"),
			Sunrise: x.integer(sys, "sys", "sunrise"),
			Sunset:  x.integer(sys, "sys", "sunset"),
		},
		ObservedAt:            x.integer(payload, "", "dt"),
		TimezoneOffsetSeconds: int(x.integer(payload, "", "timezone")),
		LocationID:            x.integer(payload, "", "id"),
		LocationName:          x.str(payload, "", "name"),
	}

	if wind, ok := x.optObject(payload, "wind"); ok {
		rec.Wind = &Wind{
			Speed:  x.optFloat(wind, "wind", "speed"),
			Degree: x.optInt(wind, "wind", "deg"),
			Gust:   x.optFloat(wind, "wind", "gust"),
		}
	}
	rec.Rain = x.precipitation(payload, "rain")
	rec.Snow = x.precipitation(payload, "snow")

	if x.err != nil {
		return nil, x.err
	}
	return rec, nil
}

// extractor reads typed fields out of decoded JSON and keeps the first
// failure. Reads after a failure return zero values.
type extractor struct {
	err *NormalizationError
}

func (x *extractor) fail(prefix, key, reason string) {
	if x.err == nil {
		x.err = &NormalizationError{Field: join(prefix, key), Reason: reason}
	}
}

func (x *extractor) lookup(m map[string]any, prefix, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	if !ok || v == nil {
		x.fail(prefix, key, "missing")
		return nil, false
	}
	return v, true
}

func (x *extractor) object(m map[string]any, prefix, key string) map[string]any {
	v, ok := x.lookup(m, prefix, key)
	if !ok {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected object, got %T", v))
		return nil
	}
	return obj
}

func (x *extractor) first(m map[string]any, key string) map[string]any {
	v, ok := x.lookup(m, "", key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		x.fail("", key, fmt.Sprintf("expected array, got %T", v))
		return nil
	}
	if len(arr) == 0 {
		x.fail("", key, "empty array")
		return nil
	}
	obj, ok := arr[0].(map[string]any)
	if !ok {
		x.fail("", key+"[0]", fmt.Sprintf("expected object, got %T", arr[0]))
		return nil
	}
	return obj
}

func (x *extractor) float(m map[string]any, prefix, key string) float64 {
	v, ok := x.lookup(m, prefix, key)
	if !ok {
		return 0
	}
	f, ok := toFloat(v)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected number, got %T", v))
	}
	return f
}

func (x *extractor) integer(m map[string]any, prefix, key string) int64 {
	v, ok := x.lookup(m, prefix, key)
	if !ok {
		return 0
	}
	n, ok := toInt(v)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected integer, got %v", v))
	}
	return n
}

func (x *extractor) str(m map[string]any, prefix, key string) string {
	v, ok := x.lookup(m, prefix, key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected string, got %T", v))
	}
	return s
}

func (x *extractor) optObject(m map[string]any, key string) (map[string]any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	if !ok {
		x.fail("", key, fmt.Sprintf("expected object, got %T", v))
		return nil, false
	}
	return obj, true
}

func (x *extractor) optFloat(m map[string]any, prefix, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected number, got %T", v))
		return nil
	}
	return &f
}

func (x *extractor) optInt(m map[string]any, prefix, key string) *int {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected integer, got %v", v))
		return nil
	}
	i := int(n)
	return &i
}

func (x *extractor) optStr(m map[string]any, prefix, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		x.fail(prefix, key, fmt.Sprintf("expected string, got %T", v))
	}
	return s
}

func (x *extractor) precipitation(payload map[string]any, key string) *Precipitation {
	obj, ok := x.optObject(payload, key)
	if !ok {
		return nil
	}
	return &Precipitation{
		LastHour:   x.optFloat(obj, key, "1h"),
		Last3Hours: x.optFloat(obj, key, "3h"),
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toInt accepts any JSON number without a fractional part.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
