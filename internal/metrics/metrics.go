// Package metrics exposes Prometheus instrumentation for sizing calculations
// and the HTTP API. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eugenenazirov/humidifier-sizer/internal/calculator"
)

const namespace = "humidifier_sizer"

// Metrics owns a dedicated registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	calculations       *prometheus.CounterVec
	capacity           prometheus.Histogram
	tank               prometheus.Histogram
	validationFailures prometheus.Counter
	requests           *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go runtime,
// process and build version collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Number of completed calculations by dominant term.",
		}, []string{"dominant"}),
		capacity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "required_capacity_ml_per_hour",
			Help:      "Required humidification capacity in mL/h.",
			Buckets:   []float64{100, 250, 500, 750, 1000, 1500, 2500, 5000},
		}),
		tank: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "required_tank_capacity_litres",
			Help:      "Required tank capacity in litres.",
			Buckets:   []float64{1, 2, 3, 5, 8, 12, 20, 40},
		}),
		validationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Number of requests rejected by input validation.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.calculations,
		m.capacity,
		m.tank,
		m.validationFailures,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector(namespace),
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCalculation records one finished calculation.
func (m *Metrics) ObserveCalculation(b calculator.Breakdown) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(string(b.Dominant)).Inc()
	m.capacity.Observe(float64(b.Result.RequiredHumidificationCapacity))
	m.tank.Observe(b.Result.RequiredTankCapacity)
}

// ObserveValidationFailure counts a rejected input.
func (m *Metrics) ObserveValidationFailure() {
	if m == nil {
		return
	}
	m.validationFailures.Inc()
}

// ObserveRequest records a served HTTP request. route should be the matched
// mux pattern rather than the raw path to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
