package owm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// stubTransport answers the probe with success and every other request
// with the configured payload or error. It records requested URLs.
type stubTransport struct {
	mu       sync.Mutex
	urls     []string
	probe    map[string]any
	probeErr error
	payload  map[string]any
	err      error
}

func (s *stubTransport) Get(_ context.Context, url string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls = append(s.urls, url)

	if len(s.urls) == 1 {
		if s.probeErr != nil {
			return nil, s.probeErr
		}
		if s.probe != nil {
			return s.probe, nil
		}
		return map[string]any{"cod": float64(200)}, nil
	}
	return s.payload, s.err
}

func (s *stubTransport) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urls[len(s.urls)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, tr *stubTransport) *Client {
	t.Helper()
	c, err := New(context.Background(), "KEY",
		WithBaseURL(testBase),
		WithTransport(tr),
		WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNewProbesKey(t *testing.T) {
	tr := &stubTransport{}
	newTestClient(t, tr)

	want := testBase + "/weather?q=delhi&appid=KEY"
	if len(tr.urls) != 1 || tr.urls[0] != want {
		t.Fatalf("expected single probe to %q, got %v", want, tr.urls)
	}
}

func TestNewRejectedKey(t *testing.T) {
	tests := []struct {
		name string
		tr   *stubTransport
		key  string
	}{
		{"unauthorized", &stubTransport{probe: map[string]any{"cod": float64(401), "message": "Invalid API key."}}, "KEY"},
		{"transport fault", &stubTransport{probeErr: errors.New("dial tcp: connection refused")}, "KEY"},
		{"garbage payload", &stubTransport{probe: map[string]any{"hello": "world"}}, "KEY"},
		{"empty key", &stubTransport{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(context.Background(), tt.key, WithTransport(tt.tr), WithLogger(quietLogger()))
			if !errors.Is(err, ErrAuthentication) {
				t.Fatalf("expected ErrAuthentication, got %v", err)
			}
			if c != nil {
				t.Fatalf("expected no client")
			}
		})
	}
}

func TestFetchByNameDelhi(t *testing.T) {
	tr := &stubTransport{payload: fullPayload(t)}
	c := newTestClient(t, tr)

	res, err := c.FetchByName(context.Background(), ByName{City: "delhi"}, Modifiers{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := testBase + "/weather?q=delhi&appid=KEY"; tr.last() != want {
		t.Fatalf("expected request %q, got %q", want, tr.last())
	}

	r := res.Record
	if r == nil {
		t.Fatalf("expected a record, got %+v", res)
	}
	if r.System.Country != "IN" {
		t.Fatalf("expected country IN, got %q", r.System.Country)
	}
	if r.Coordinates.Longitude != 77.2167 || r.Coordinates.Latitude != 28.6667 {
		t.Fatalf("unexpected coordinates: %+v", r.Coordinates)
	}
	if r.LocationID != 1273294 {
		t.Fatalf("expected id 1273294, got %d", r.LocationID)
	}
}

func TestFetchByPostalCodeWithoutWind(t *testing.T) {
	payload := decode(t, `{
		"coord": {"lon": -73.9967, "lat": 40.7484},
		"weather": [{"main": "Clear", "description": "clear sky"}],
		"main": {"temp": 288.1, "feels_like": 287.2, "temp_min": 286.4, "temp_max": 289.8, "pressure": 1021, "humidity": 61},
		"visibility": 10000,
		"clouds": {"all": 0},
		"dt": 1696149600,
		"sys": {"country": "US", "sunrise": 1696156904, "sunset": 1696199263},
		"timezone": -14400,
		"id": 0,
		"name": "New York",
		"cod": 200
	}`)
	tr := &stubTransport{payload: payload}
	c := newTestClient(t, tr)

	res, err := c.FetchByPostalCode(context.Background(), PostalCode(10001, ""), Modifiers{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(tr.last(), "/weather?zip=10001&appid=KEY") {
		t.Fatalf("unexpected request %q", tr.last())
	}

	r := res.Record
	if r.Wind != nil {
		t.Fatalf("expected nil wind, got %+v", r.Wind)
	}
	if r.System.Country != "US" || r.LocationName != "New York" || r.LocationID != 0 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.Coordinates.Longitude != -73.9967 || r.Coordinates.Latitude != 40.7484 {
		t.Fatalf("unexpected coordinates: %+v", r.Coordinates)
	}
	if r.Measurements.Humidity != 61 || r.Visibility != 10000 || r.TimezoneOffsetSeconds != -14400 {
		t.Fatalf("expected remaining fields populated, got %+v", r)
	}
}

func TestFetchByIDAndCoordinatesRequests(t *testing.T) {
	tr := &stubTransport{payload: fullPayload(t)}
	c := newTestClient(t, tr)
	ctx := context.Background()

	if _, err := c.FetchByID(ctx, ByID{ID: 1273294}, Modifiers{Units: "Metric", Language: "hindi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testBase + "/weather?id=1273294&appid=KEY&units=metric&lang=hi"; tr.last() != want {
		t.Fatalf("expected %q, got %q", want, tr.last())
	}

	if _, err := c.FetchByCoordinates(ctx, ByCoordinates{Latitude: 28.6692, Longitude: 77.4538}, Modifiers{Units: "kelvin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testBase + "/weather?lat=28.6692&lon=77.4538&appid=KEY"; tr.last() != want {
		t.Fatalf("expected %q, got %q", want, tr.last())
	}
}

func TestFetchRaw(t *testing.T) {
	payload := fullPayload(t)
	tr := &stubTransport{payload: payload}
	c := newTestClient(t, tr)

	res, err := c.FetchByName(context.Background(), ByName{City: "delhi"}, Modifiers{Output: OutputRaw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Record != nil {
		t.Fatalf("did not expect a record")
	}
	if res.Raw["name"] != "Delhi" || len(res.Raw) != len(payload) {
		t.Fatalf("expected raw payload unmodified, got %v", res.Raw)
	}
}

func TestFetchAPIError(t *testing.T) {
	tr := &stubTransport{payload: map[string]any{"cod": "404", "message": "city not found"}}
	c := newTestClient(t, tr)

	for _, out := range []OutputFormat{OutputStructured, OutputRaw} {
		res, err := c.FetchByName(context.Background(), ByName{City: "atlantis"}, Modifiers{Output: out})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", out, err)
		}
		if res.Failure == nil || res.Failure.Code != 404 || res.Failure.Message != "city not found" {
			t.Fatalf("%s: unexpected failure: %+v", out, res.Failure)
		}
	}
}

func TestFetchTransportFault(t *testing.T) {
	tr := &stubTransport{err: errors.New(`Get "https://x/weather?appid=KEY": timeout`)}
	c := newTestClient(t, tr)

	_, err := c.FetchByName(context.Background(), ByName{City: "delhi"}, Modifiers{})
	if err != ErrFetch {
		t.Fatalf("expected bare ErrFetch, got %v", err)
	}

	// The client stays usable after a failed call.
	tr.err = nil
	tr.payload = fullPayload(t)
	if _, err := c.FetchByName(context.Background(), ByName{City: "delhi"}, Modifiers{}); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
}

func TestFetchNormalizationFailure(t *testing.T) {
	tr := &stubTransport{payload: map[string]any{"cod": float64(200), "name": "Delhi"}}
	c := newTestClient(t, tr)

	_, err := c.FetchByName(context.Background(), ByName{City: "delhi"}, Modifiers{})
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected ErrNormalization, got %v", err)
	}
	if errors.Is(err, ErrFetch) {
		t.Fatalf("normalization failure must be distinct from fetch failure")
	}
}

func TestFetchInvalidSelectorSkipsTransport(t *testing.T) {
	tr := &stubTransport{payload: fullPayload(t)}
	c := newTestClient(t, tr)

	_, err := c.FetchByCoordinates(context.Background(), ByCoordinates{Latitude: 123}, Modifiers{})
	if !errors.Is(err, ErrInvalidSelector) {
		t.Fatalf("expected ErrInvalidSelector, got %v", err)
	}
	if len(tr.urls) != 1 {
		t.Fatalf("expected only the probe request, got %v", tr.urls)
	}
}

func TestRedactKey(t *testing.T) {
	c := &Client{key: "SECRET"}
	got := c.redact(errors.New(`Get "https://x/weather?appid=SECRET": EOF`))
	if strings.Contains(got, "SECRET") {
		t.Fatalf("expected key to be redacted, got %q", got)
	}
}
