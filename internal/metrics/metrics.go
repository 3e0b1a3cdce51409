package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/owm-current-weather/owm"
)

// Outcome labels for lookups.
const (
	OutcomeOK              = "ok"
	OutcomeAPIError        = "api_error"
	OutcomeFetchError      = "fetch_error"
	OutcomeNormalizeError  = "normalize_error"
	OutcomeInvalidSelector = "invalid_selector"
)

// Metrics records lookup counts and upstream latency on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owm_lookups_total",
				Help: "Current weather lookups by selector kind, caller and outcome.",
			},
			[]string{"selector", "source", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "owm_lookup_duration_seconds",
				Help:    "Histogram of current weather lookup round-trip times.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"selector"},
		),
	}
	m.registry.MustRegister(m.lookups, m.latency)
	return m
}

// Observe records one lookup. source names the caller, e.g. "api" or "watch".
// A nil *Metrics discards the observation.
func (m *Metrics) Observe(sel owm.LocationSelector, source string, res owm.Result, err error, took time.Duration) {
	if m == nil {
		return
	}
	kind := "unknown"
	if sel != nil {
		kind = sel.Kind()
	}
	m.lookups.WithLabelValues(kind, source, Outcome(res, err)).Inc()
	m.latency.WithLabelValues(kind).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome classifies a lookup result for the outcome label.
func Outcome(res owm.Result, err error) string {
	switch {
	case err == nil && res.Failure != nil:
		return OutcomeAPIError
	case err == nil:
		return OutcomeOK
	case errors.Is(err, owm.ErrInvalidSelector):
		return OutcomeInvalidSelector
	case errors.Is(err, owm.ErrNormalization):
		return OutcomeNormalizeError
	default:
		return OutcomeFetchError
	}
}
