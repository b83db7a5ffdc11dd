package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "aigc_client"

// Metrics holds the Prometheus collectors that instrument outgoing calls.
// Every collector is partitioned by backend name.
type Metrics struct {
	inFlight *prometheus.GaugeVec
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
// A nil registerer leaves them unregistered.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "in_flight_requests",
			Help:      "Number of outgoing HTTP requests waiting for response headers.",
		}, []string{"backend"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Outgoing HTTP requests by backend, status code and method.",
		}, []string{"backend", "code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Time until response headers arrive, by backend and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "code", "method"}),
	}

	if registerer != nil {
		registerer.MustRegister(m.inFlight, m.requests, m.duration)
	}

	return m
}

// Middleware returns a chain middleware that records calls under the given backend name.
func (m *Metrics) Middleware(backend string) Middleware {
	labels := prometheus.Labels{"backend": backend}

	inFlight := m.inFlight.With(labels)
	requests := m.requests.MustCurryWith(labels)
	duration := m.duration.MustCurryWith(labels)

	return func(next http.RoundTripper) http.RoundTripper {
		return promhttp.InstrumentRoundTripperInFlight(inFlight,
			promhttp.InstrumentRoundTripperCounter(requests,
				promhttp.InstrumentRoundTripperDuration(duration, next)))
	}
}

// Collectors exposes the collectors, mostly for tests.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.inFlight, m.requests, m.duration}
}
