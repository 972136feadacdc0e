// Package metrics holds the Prometheus collectors for the API and worker.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finance/internal/core"
)

const namespace = "finance"

// Metrics holds Prometheus metrics for a process. Each instance owns its
// registry so tests and binaries never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   prometheus.Gauge
	EventsTotal        *prometheus.CounterVec
	RateLimited        prometheus.Counter
	SuspiciousRequests prometheus.Counter
}

// New creates a metrics instance for the named subsystem
func New(subsystem string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "transaction_events_total",
				Help:      "Transaction events published or consumed",
			},
			[]string{"direction", "type", "result"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
		SuspiciousRequests: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "suspicious_requests_total",
				Help:      "Requests matching probing patterns",
			},
		),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records count, latency and in-flight requests per route
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := RouteLabel(r.URL.Path)
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
	})
}

// ObserveEvent counts a published or consumed event
func (m *Metrics) ObserveEvent(direction string, typ core.EventType, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsTotal.WithLabelValues(direction, string(typ), result).Inc()
}

// EventPublisher matches services.EventPublisher
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev core.TransactionEvent) error
}

type instrumentedPublisher struct {
	next    EventPublisher
	metrics *Metrics
}

// InstrumentPublisher counts every publish attempt and its outcome
func (m *Metrics) InstrumentPublisher(next EventPublisher) EventPublisher {
	return &instrumentedPublisher{next: next, metrics: m}
}

func (p *instrumentedPublisher) PublishTransactionEvent(ctx context.Context, ev core.TransactionEvent) error {
	err := p.next.PublishTransactionEvent(ctx, ev)
	p.metrics.ObserveEvent("published", ev.Type, err)
	return err
}

var knownRoutes = map[string]bool{
	"/api/transactions":  true,
	"/api/summary":       true,
	"/api/summary/chart": true,
	"/api/auth/login":    true,
	"/api/status":        true,
	"/healthz":           true,
	"/readyz":            true,
	"/metrics":           true,
}

// RouteLabel collapses ids so label cardinality stays bounded
func RouteLabel(path string) string {
	if knownRoutes[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/api/transactions/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/api/transactions/{id}"
	}
	return "other"
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
