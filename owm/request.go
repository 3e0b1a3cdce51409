package owm

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the OpenWeatherMap data API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

const weatherPath = "/weather"

// OutputFormat controls whether a lookup is normalized into a WeatherRecord
// or handed back as the decoded JSON object.
type OutputFormat int

const (
	OutputStructured OutputFormat = iota
	OutputRaw
)

// ParseOutputFormat maps "raw", "json" and "dict" to OutputRaw. Anything
// else, including the empty string, is OutputStructured.
func ParseOutputFormat(s string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "json", "dict":
		return OutputRaw
	default:
		return OutputStructured
	}
}

func (f OutputFormat) String() string {
	if f == OutputRaw {
		return "raw"
	}
	return "structured"
}

// Modifiers shape a request without changing the location it targets.
// Unrecognized Units or Language values are dropped, never rejected.
type Modifiers struct {
	Units    string
	Language string
	Output   OutputFormat
}

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is a fully-formed request against the current weather endpoint.
// Params keep the order they were added in.
type Query struct {
	Base   string
	Path   string
	Params []Param
}

// Get returns the value of the first parameter named key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the parameters as a query string. Commas are left
// unescaped since the API uses them as field separators.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q.Params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(p.Value), "%2C", ","))
	}
	return b.String()
}

// URL returns the absolute request URL.
func (q Query) URL() string {
	return strings.TrimRight(q.Base, "/") + q.Path + "?" + q.Encode()
}

// BuildQuery assembles the request for sel. It never fails: modifier
// values that cannot be resolved are left out of the query.
func BuildQuery(base, key string, sel LocationSelector, mods Modifiers) Query {
	params := sel.params()
	params = append(params, Param{Key: "appid", Value: key})

	if mods.Units != "" {
		if u, ok := ResolveUnits(mods.Units); ok {
			params = append(params, Param{Key: "units", Value: u})
		}
	}
	if mods.Language != "" {
		if code, ok := ResolveLanguage(mods.Language); ok {
			params = append(params, Param{Key: "lang", Value: code})
		}
	}

	return Query{
		Base:   base,
		Path:   weatherPath,
		Params: params,
	}
}
