// Package metrics provides Prometheus metrics for zegraphql
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for zegraphql
type Metrics struct {
	// Manager metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	QuerySkippedTotal *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them on reg.
// Pass prometheus.NewRegistry() in tests to keep registrations isolated.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zegraphql_manager_operations_total",
				Help: "Total number of manager operations",
			},
			[]string{"entity", "operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zegraphql_manager_operation_duration_seconds",
				Help:    "Duration of manager operations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"entity", "operation"},
		),
		QuerySkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zegraphql_query_skipped_total",
				Help: "Filters and sorts dropped because their field path did not resolve",
			},
			[]string{"entity", "kind"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zegraphql_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zegraphql_http_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveOperation records a manager operation with its outcome
func (m *Metrics) ObserveOperation(entity, op, status string, elapsed time.Duration) {
	m.OperationsTotal.WithLabelValues(entity, op, status).Inc()
	m.OperationDuration.WithLabelValues(entity, op).Observe(elapsed.Seconds())
}

// ObserveSkip records a dropped filter or sort
func (m *Metrics) ObserveSkip(entity, kind string) {
	m.QuerySkippedTotal.WithLabelValues(entity, kind).Inc()
}

// RecordRequest records an API request
func (m *Metrics) RecordRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
