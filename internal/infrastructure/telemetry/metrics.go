package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/shared"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
)

// Metrics owns a private Prometheus registry with the HTTP and lending
// collectors of this service.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestsActive  prometheus.Gauge
	loanEvents      *prometheus.CounterVec
	stockChanges    prometheus.Counter
	deliveries      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a new registry.
func NewMetrics(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		}),
		loanEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "loan_events_total",
			Help:      "Loan lifecycle events by type",
		}, []string{"event_type"}),
		stockChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "asset_stock_changes_total",
			Help:      "Asset stock quantity changes",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "event_deliveries_total",
			Help:      "Event deliveries to idempotent handlers by outcome",
		}, []string{"handler", "outcome"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestsActive,
		m.loanEvents,
		m.stockChanges,
		m.deliveries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: ns}),
	)
	return m
}

// RegisterDBStats exports connection pool statistics of db
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Registry exposes the registry for tests and additional collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RequestStarted increments the in-flight gauge; the returned func records
// the finished request.
func (m *Metrics) RequestStarted() func(method, route string, status int) {
	start := time.Now()
	m.requestsActive.Inc()
	return func(method, route string, status int) {
		m.requestsActive.Dec()
		code := strconv.Itoa(status)
		m.requestsTotal.WithLabelValues(method, route, code).Inc()
		m.requestDuration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
	}
}

// RecordDelivery counts one delivery outcome of an idempotent handler
func (m *Metrics) RecordDelivery(handler, outcome string) {
	m.deliveries.WithLabelValues(handler, outcome).Inc()
}

// EventTypes returns the events counted by Metrics
func (m *Metrics) EventTypes() []string {
	return append(append([]string(nil), lending.LoanEventTypes...), lending.EventTypeAssetStockChanged)
}

// Handle counts a lending event. Metrics is subscribed to the event bus.
func (m *Metrics) Handle(_ context.Context, event shared.DomainEvent) error {
	if event.EventType() == lending.EventTypeAssetStockChanged {
		m.stockChanges.Inc()
		return nil
	}
	m.loanEvents.WithLabelValues(event.EventType()).Inc()
	return nil
}

var _ shared.EventHandler = (*Metrics)(nil)
