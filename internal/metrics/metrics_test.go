package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/i474232898/owm-current-weather/owm"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		res  owm.Result
		err  error
		want string
	}{
		{owm.Result{Record: &owm.WeatherRecord{}}, nil, OutcomeOK},
		{owm.Result{Failure: &owm.APIError{Code: 404}}, nil, OutcomeAPIError},
		{owm.Result{}, owm.ErrFetch, OutcomeFetchError},
		{owm.Result{}, &owm.NormalizationError{Field: "main"}, OutcomeNormalizeError},
		{owm.Result{}, owm.ByID{}.Validate(), OutcomeInvalidSelector},
		{owm.Result{}, errors.New("boom"), OutcomeFetchError},
	}
	for _, tt := range tests {
		if got := Outcome(tt.res, tt.err); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestObserveAndHandler(t *testing.T) {
	m := New()
	sel := owm.ByName{City: "delhi"}

	m.Observe(sel, "api", owm.Result{Record: &owm.WeatherRecord{}}, nil, 120*time.Millisecond)
	m.Observe(sel, "api", owm.Result{Record: &owm.WeatherRecord{}}, nil, 80*time.Millisecond)
	m.Observe(owm.ByID{ID: 1}, "watch", owm.Result{}, owm.ErrFetch, time.Second)

	if got := testutil.ToFloat64(m.lookups.WithLabelValues("name", "api", OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok lookups, got %v", got)
	}
	if got := testutil.ToFloat64(m.lookups.WithLabelValues("id", "watch", OutcomeFetchError)); got != 1 {
		t.Fatalf("expected 1 failed lookup, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "owm_lookup_duration_seconds") {
		t.Fatalf("expected histogram in exposition output")
	}
}
