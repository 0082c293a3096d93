// Package metrics exposes Prometheus counters for compilations and backend
// calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "rollup_configurator"

const (
	OutcomeSuccess      = "success"
	OutcomeInvalid      = "invalid"
	OutcomeNotSupported = "not_supported"
	OutcomeError        = "error"
)

// UnknownField is the field label for rejected keys that are not catalog parameters.
const UnknownField = "unknown"

type Metrics struct {
	registry *prometheus.Registry

	compilations   *prometheus.CounterVec
	invalidFields  *prometheus.CounterVec
	backendCalls   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		compilations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "compilations_total",
			Help:      "Count of configuration compilations by outcome",
		}, []string{"outcome"}),

		invalidFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invalid_fields_total",
			Help:      "Count of rejected fields by parameter id and reason",
		}, []string{"field", "reason"}),

		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_requests_total",
			Help:      "Count of build and inspection requests by operation and outcome",
		}, []string{"operation", "outcome"}),

		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_request_duration_seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			Help:      "Duration of build and inspection requests",
		}, []string{"operation"}),
	}

	registry.MustRegister(m.compilations, m.invalidFields, m.backendCalls, m.backendLatency)

	return m
}

func (m *Metrics) RecordCompilation(outcome string) {
	m.compilations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordInvalidField(field, reason string) {
	m.invalidFields.WithLabelValues(field, reason).Inc()
}

// RecordBackendCall records one call to the build or inspection service.
func (m *Metrics) RecordBackendCall(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
