package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry     *prometheus.Registry
	rateLimit    *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewMetrics registers the service collectors on a private registry so
// tests can build as many servers as they like.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rateLimit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "car_rental",
			Subsystem: "ratelimit",
			Name:      "requests_total",
			Help:      "Rate limiter decisions by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "car_rental",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "car_rental",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(m.rateLimit, m.httpRequests, m.httpLatency)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRateLimit counts one limiter decision. outcome is one of
// allowed, rejected or error.
func (m *Metrics) RecordRateLimit(outcome string) {
	m.rateLimit.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRequest(method, route string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}
