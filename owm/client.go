// Package owm is a client for the OpenWeatherMap current weather API.
//
// A Client is created with New, which checks the API key with a single
// probe request. Lookups take a LocationSelector (ByName, ByID,
// ByCoordinates or ByPostalCode) plus Modifiers and return a Result that
// carries either a normalized WeatherRecord, the raw decoded payload, or
// the upstream's own APIError.
package owm

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// probeCity is looked up once at construction to check the API key.
const probeCity = "delhi"

// Client performs current weather lookups. The key and base URL are fixed
// at construction, so a Client is safe for concurrent use.
type Client struct {
	key       string
	baseURL   string
	transport Transport
	logger    *slog.Logger
}

type Option func(*Client)

// WithBaseURL points the client at a different API root, e.g. a proxy or
// a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithHTTPClient uses hc through the default HTTPTransport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = NewHTTPTransport(hc)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Client and verifies apiKey with a probe lookup. Any probe
// outcome other than an upstream success, including a transport fault,
// returns ErrAuthentication.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		key:     apiKey,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(nil)
	}

	if !c.authenticate(ctx) {
		return nil, ErrAuthentication
	}
	return c, nil
}

func (c *Client) authenticate(ctx context.Context) bool {
	if strings.TrimSpace(c.key) == "" {
		c.logger.Warn("owm: empty API key")
		return false
	}

	q := BuildQuery(c.baseURL, c.key, ByName{City: probeCity}, Modifiers{})
	payload, err := c.transport.Get(ctx, q.URL())
	if err != nil {
		c.logger.Warn("owm: authentication probe failed", "error", c.redact(err))
		return false
	}

	failure, err := checkStatus(payload)
	if err != nil {
		c.logger.Warn("owm: authentication probe returned unexpected payload", "error", err)
		return false
	}
	if failure != nil {
		c.logger.Warn("owm: API key rejected", "code", failure.Code, "message", failure.Message)
		return false
	}
	return true
}

// redact keeps the API key out of logged transport errors, which
// usually quote the request URL.
func (c *Client) redact(err error) string {
	if c.key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), c.key, "REDACTED")
}

// BaseURL returns the API root lookups are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchByName looks up the current weather for a city name.
func (c *Client) FetchByName(ctx context.Context, sel ByName, mods Modifiers) (Result, error) {
	return c.Fetch(ctx, sel, mods)
}

// FetchByID looks up the current weather for an OpenWeatherMap city id.
func (c *Client) FetchByID(ctx context.Context, sel ByID, mods Modifiers) (Result, error) {
	return c.Fetch(ctx, sel, mods)
}

// FetchByCoordinates looks up the current weather for a latitude/longitude pair.
func (c *Client) FetchByCoordinates(ctx context.Context, sel ByCoordinates, mods Modifiers) (Result, error) {
	return c.Fetch(ctx, sel, mods)
}

// FetchByPostalCode looks up the current weather for a postal code.
func (c *Client) FetchByPostalCode(ctx context.Context, sel ByPostalCode, mods Modifiers) (Result, error) {
	return c.Fetch(ctx, sel, mods)
}

// Fetch performs a single lookup for any selector.
//
// The returned error is one of: an error wrapping ErrInvalidSelector (no
// request was sent), ErrFetch, or a *NormalizationError. An upstream
// failure such as an unknown city is not an error; it is reported in
// Result.Failure.
func (c *Client) Fetch(ctx context.Context, sel LocationSelector, mods Modifiers) (Result, error) {
	if sel == nil {
		return Result{}, ErrInvalidSelector
	}
	if err := sel.Validate(); err != nil {
		return Result{}, err
	}

	q := BuildQuery(c.baseURL, c.key, sel, mods)

	payload, err := c.transport.Get(ctx, q.URL())
	if err != nil {
		c.logger.Warn("owm: fetch failed", "selector", sel.Kind(), "error", c.redact(err))
		return Result{}, ErrFetch
	}

	if mods.Output == OutputRaw {
		failure, err := checkStatus(payload)
		if err != nil {
			return Result{}, err
		}
		if failure != nil {
			return Result{Failure: failure}, nil
		}
		return Result{Raw: payload}, nil
	}

	res, err := Normalize(payload)
	if err != nil {
		c.logger.Warn("owm: could not normalize payload", "selector", sel.Kind(), "error", err)
		return Result{}, err
	}
	return res, nil
}
