package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec

	// Domain metrics
	ItemUpserts   *prometheus.CounterVec
	ExportsServed prometheus.Counter
}

// NewMetrics creates all application metrics and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path", "status"}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "status"}),

		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		ItemUpserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encounter_item_upserts_total",
			Help:      "Total number of encounter item writes by item type",
		}, []string{"item_type"}),
		ExportsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patient_exports_total",
			Help:      "Total number of patient spreadsheet exports served",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestDuration,
			m.RequestTotal,
			m.ErrorTotal,
			m.DatabaseOperations,
			m.DatabaseLatency,
			m.ItemUpserts,
			m.ExportsServed,
		)
	}

	return m
}

// ObserveDB records the outcome and latency of a database operation.
// A nil receiver is a no-op.
func (m *Metrics) ObserveDB(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveItemUpsert(itemType string) {
	if m == nil {
		return
	}
	m.ItemUpserts.WithLabelValues(itemType).Inc()
}

func (m *Metrics) ObserveExport() {
	if m == nil {
		return
	}
	m.ExportsServed.Inc()
}
