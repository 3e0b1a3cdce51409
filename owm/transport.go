package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Transport performs a GET and decodes the body as a JSON object.
// Implementations report network, status and decode problems as errors;
// the Client treats all of them alike.
type Transport interface {
	Get(ctx context.Context, url string) (map[string]any, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// HTTPTransport is the default Transport. It decodes the body of every
// response except 429 and 5xx, since the API describes 401 and 404
// failures in a JSON body.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport returns an HTTPTransport using client, or a client with
// a 10 second timeout when client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPTransport{Client: client}
}

func (t *HTTPTransport) Get(ctx context.Context, url string) (map[string]any, error) {
	if t.Client == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode response: body is not a JSON object")
	}
	return payload, nil
}

// BreakerTransport guards another Transport with a circuit breaker. It
// makes exactly one attempt per call; an open circuit fails fast.
type BreakerTransport struct {
	next    Transport
	circuit *gobreaker.CircuitBreaker
}

func NewBreakerTransport(name string, next Transport) *BreakerTransport {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &BreakerTransport{next: next, circuit: cb}
}

// State exposes the breaker state for logging.
func (t *BreakerTransport) State() gobreaker.State {
	return t.circuit.State()
}

func (t *BreakerTransport) Get(ctx context.Context, url string) (map[string]any, error) {
	result, err := t.circuit.Execute(func() (interface{}, error) {
		return t.next.Get(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	payload, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return payload, nil
}
