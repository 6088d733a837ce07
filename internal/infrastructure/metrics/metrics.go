// Package metrics exposes portal counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metric names.
const (
	MetricHTTPRequestsTotal       = "portal_http_requests_total"
	MetricHTTPRequestDuration     = "portal_http_request_duration_seconds"
	MetricStatementsTotal         = "portal_statements_total"
	MetricLedgerEntriesTotal      = "portal_ledger_entries_recorded_total"
	MetricDuesChargesTotal        = "portal_dues_charges_total"
	MetricImportRowsTotal         = "portal_import_rows_total"
	MetricLedgerInconsistentTotal = "portal_ledger_inconsistent_total"
)

// Metrics owns a private registry so tests and multiple servers never
// collide on the global one.
//
// All recording methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	statements         *prometheus.CounterVec
	ledgerEntries      *prometheus.CounterVec
	duesCharges        prometheus.Counter
	importRows         *prometheus.CounterVec
	ledgerInconsistent prometheus.Counter
}

// New creates and registers the portal metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricStatementsTotal,
			Help: "Member statements computed, by outcome.",
		}, []string{"result"}),
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricLedgerEntriesTotal,
			Help: "Ledger entries written, by kind.",
		}, []string{"kind"}),
		duesCharges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricDuesChargesTotal,
			Help: "Dues charges created by dues runs.",
		}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricImportRowsTotal,
			Help: "Spreadsheet rows processed, by sheet and result.",
		}, []string{"sheet", "result"}),
		ledgerInconsistent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricLedgerInconsistentTotal,
			Help: "Statements rejected because totals and allocation disagreed.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.statements,
		m.ledgerEntries,
		m.duesCharges,
		m.importRows,
		m.ledgerInconsistent,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StatementServed counts a statement by outcome ("ok" or an error code)
func (m *Metrics) StatementServed(result string) {
	if m == nil {
		return
	}
	m.statements.WithLabelValues(result).Inc()
}

// LedgerEntriesRecorded counts written ledger entries of a kind
func (m *Metrics) LedgerEntriesRecorded(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerEntries.WithLabelValues(kind).Add(float64(n))
}

// DuesCharged counts charges created by a dues run
func (m *Metrics) DuesCharged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.duesCharges.Add(float64(n))
}

// ImportRows counts processed sheet rows
func (m *Metrics) ImportRows(sheet string, imported, rejected int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(sheet, "imported").Add(float64(imported))
	m.importRows.WithLabelValues(sheet, "rejected").Add(float64(rejected))
}

// LedgerInconsistent counts a failed summary consistency check
func (m *Metrics) LedgerInconsistent() {
	if m == nil {
		return
	}
	m.ledgerInconsistent.Inc()
}

// GinMiddleware records request counts and latency per route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
