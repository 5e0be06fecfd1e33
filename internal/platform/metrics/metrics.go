package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breaker state values exported by fx_circuit_breaker_state.
const (
	BreakerClosed   = 0
	BreakerHalfOpen = 1
	BreakerOpen     = 2
)

// Metrics holds the service's Prometheus collectors.
// All Record methods are safe to call on a nil *Metrics.
type Metrics struct {
	IngestionsTotal       *prometheus.CounterVec
	IngestedRowsTotal     *prometheus.CounterVec
	ParseSkippedRowsTotal *prometheus.CounterVec

	SourceRequestsTotal   *prometheus.CounterVec
	SourceRequestDuration prometheus.Histogram
	CircuitBreakerState   prometheus.Gauge

	RateResolutionsTotal *prometheus.CounterVec
	ConversionsTotal     *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		IngestionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_ingestions_total",
				Help: "Ingestion attempts by currency and outcome status",
			},
			[]string{"currency", "status"},
		),
		IngestedRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_ingested_rows_total",
				Help: "Rate observations newly written to the store",
			},
			[]string{"currency"},
		),
		ParseSkippedRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_parse_skipped_rows_total",
				Help: "Provider CSV rows dropped because they could not be parsed",
			},
			[]string{"currency"},
		),
		SourceRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_source_requests_total",
				Help: "Calls to the rate provider by outcome",
			},
			[]string{"outcome"},
		),
		SourceRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fx_source_request_duration_seconds",
				Help:    "Latency of single provider HTTP calls",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
			},
		),
		CircuitBreakerState: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fx_circuit_breaker_state",
				Help: "Provider circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
		RateResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_rate_resolutions_total",
				Help: "Rate resolutions by the tier that answered (EXACT, REFRESHED, FALLBACK, NOT_FOUND)",
			},
			[]string{"tier"},
		),
		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_conversions_total",
				Help: "Conversion requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// RecordIngestion records one finished ingestion attempt.
func (m *Metrics) RecordIngestion(currency, status string, inserted, skipped int) {
	if m == nil {
		return
	}
	m.IngestionsTotal.WithLabelValues(currency, status).Inc()
	if inserted > 0 {
		m.IngestedRowsTotal.WithLabelValues(currency).Add(float64(inserted))
	}
	if skipped > 0 {
		m.ParseSkippedRowsTotal.WithLabelValues(currency).Add(float64(skipped))
	}
}

// RecordSourceRequest records a provider call outcome and, when d > 0, its latency.
func (m *Metrics) RecordSourceRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.SourceRequestDuration.Observe(d.Seconds())
	}
}

// SetBreakerState publishes the breaker state (see Breaker* constants).
func (m *Metrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.Set(float64(state))
}

// RecordResolution records which tier answered a rate query.
func (m *Metrics) RecordResolution(tier string) {
	if m == nil {
		return
	}
	m.RateResolutionsTotal.WithLabelValues(tier).Inc()
}

// RecordConversion records a conversion outcome.
func (m *Metrics) RecordConversion(outcome string) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(outcome).Inc()
}
