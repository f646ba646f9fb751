// Package metrics provides Prometheus metrics for sheet imports and exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Manager owns the import/export collectors. A nil *Manager is valid and
// records nothing, so services can run without metrics in tests.
type Manager struct {
	namespace string
	subsystem string
	registry  *prometheus.Registry

	imports         *prometheus.CounterVec
	importFailures  *prometheus.CounterVec
	rowsImported    *prometheus.CounterVec
	recordsCreated  *prometheus.CounterVec
	recordsUpdated  *prometheus.CounterVec
	dateWarnings    *prometheus.CounterVec
	collectionSize  *prometheus.GaugeVec
	exports         *prometheus.CounterVec
	exportFailures  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// NewManager creates a metrics manager on its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "engtrack",
		subsystem: "sheets",
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.imports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "imports_total",
		Help:      "Import batches by record kind and outcome",
	}, []string{"kind", "outcome"})

	m.importFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "import_failures_total",
		Help:      "Fatal import failures by record kind and reason",
	}, []string{"kind", "reason"})

	m.rowsImported = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_imported_total",
		Help:      "Data rows mapped from uploaded sheets",
	}, []string{"kind"})

	m.recordsCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_created_total",
		Help:      "Records appended by reconciliation",
	}, []string{"kind"})

	m.recordsUpdated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_updated_total",
		Help:      "Records replaced in place by reconciliation",
	}, []string{"kind"})

	m.dateWarnings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "date_warnings_total",
		Help:      "Cells whose date could not be interpreted",
	}, []string{"kind"})

	m.collectionSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "collection_size",
		Help:      "Stored records per kind after the last write",
	}, []string{"kind"})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "exports_total",
		Help:      "Workbooks produced by kind and artifact (blank, sample, export, rows)",
	}, []string{"kind", "artifact"})

	m.exportFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "export_failures_total",
		Help:      "Export requests that produced no file",
	}, []string{"kind", "artifact"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestTime = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ImportSucceeded records a completed batch.
func (m *Manager) ImportSucceeded(kind string, rows, created, updated, warnings, collection int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(kind, OutcomeSuccess).Inc()
	m.rowsImported.WithLabelValues(kind).Add(float64(rows))
	m.recordsCreated.WithLabelValues(kind).Add(float64(created))
	m.recordsUpdated.WithLabelValues(kind).Add(float64(updated))
	m.dateWarnings.WithLabelValues(kind).Add(float64(warnings))
	m.collectionSize.WithLabelValues(kind).Set(float64(collection))
}

// ImportFailed records a batch aborted by a fatal error.
func (m *Manager) ImportFailed(kind, reason string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(kind, OutcomeFailure).Inc()
	m.importFailures.WithLabelValues(kind, reason).Inc()
}

// ExportProduced records a generated workbook.
func (m *Manager) ExportProduced(kind, artifact string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind, artifact).Inc()
}

// ExportFailed records an export that produced no file.
func (m *Manager) ExportFailed(kind, artifact string) {
	if m == nil {
		return
	}
	m.exportFailures.WithLabelValues(kind, artifact).Inc()
}

// ObserveHTTP records one served request.
func (m *Manager) ObserveHTTP(route, method, statusCode string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
	m.httpRequestTime.WithLabelValues(route, method).Observe(seconds)
}
