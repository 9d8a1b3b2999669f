// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service's collectors. Each server gets its own registry
// so tests can build many servers in one process.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	Orders          *prometheus.CounterVec
	FactoryDuration prometheus.Histogram
	AuthEvents      *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizza_http_requests_total",
				Help: "HTTP requests by route pattern and status code",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pizza_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		Orders: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizza_orders_total",
				Help: "Orders by final status",
			},
			[]string{"status"},
		),
		FactoryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pizza_factory_request_duration_seconds",
				Help:    "Latency of factory fulfillment calls",
				Buckets: prometheus.DefBuckets,
			},
		),
		AuthEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pizza_auth_events_total",
				Help: "Authentication events by kind and outcome",
			},
			[]string{"event", "outcome"},
		),
	}
}
