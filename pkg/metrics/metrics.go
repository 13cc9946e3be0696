// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	extractions        *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	extractedRows      prometheus.Histogram
	httpRequests       *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_extractions_total",
			Help: "Statement extractions by outcome.",
		}, []string{"outcome"}),
		extractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_extraction_duration_seconds",
			Help:    "Time spent extracting one statement.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		extractedRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_extracted_rows",
			Help:    "Rows in successfully extracted tables.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.extractions,
		m.extractionDuration,
		m.extractedRows,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveExtraction records one finished extraction.
func (m *Metrics) ObserveExtraction(outcome string, rows int, elapsed time.Duration) {
	m.extractions.WithLabelValues(outcome).Inc()
	m.extractionDuration.Observe(elapsed.Seconds())
	if rows > 0 {
		m.extractedRows.Observe(float64(rows))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
