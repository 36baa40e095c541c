// Package metrics exposes Prometheus instrumentation for the ledger services.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cardledger/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "card_ledger"

type Metrics struct {
	registry *prometheus.Registry

	operationsTotal    *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
	settlementsTotal   *prometheus.CounterVec
	outboxPublished    *prometheus.CounterVec
}

// New registers all collectors on a private registry, including the Go
// runtime and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "operations_total",
				Help:      "Total ledger operations partitioned by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		settlementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "settlement",
				Name:      "notices_total",
				Help:      "Escrow settlement notices handled, by notice outcome and result.",
			},
			[]string{"outcome", "result"},
		),
		outboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "outbox",
				Name:      "messages_total",
				Help:      "Outbox messages handled by the poller, by event type and result.",
			},
			[]string{"event_type", "result"},
		),
	}
}

// ObserveOperation implements ledger.Observer
func (m *Metrics) ObserveOperation(op string, err error) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(op, Outcome(err)).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSettlement records a settlement notice with the result of applying it
// (applied, duplicate, dead_lettered, retry)
func (m *Metrics) ObserveSettlement(outcome shared.SettlementOutcome, result string) {
	if m == nil {
		return
	}
	m.settlementsTotal.WithLabelValues(string(outcome), result).Inc()
}

func (m *Metrics) ObserveOutboxMessage(eventType string, err error) {
	if m == nil {
		return
	}
	result := "published"
	if err != nil {
		result = "error"
	}
	m.outboxPublished.WithLabelValues(eventType, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome classifies an operation error into a low-cardinality label
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}

	var (
		validationErr   shared.ValidationError
		fundsErr        shared.InsufficientFundsError
		invalidStateErr shared.InvalidStateError
		notFoundErr     shared.NotFoundError
		conflictErr     shared.ConflictError
		storageErr      shared.StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &fundsErr):
		return "insufficient_funds"
	case errors.As(err, &invalidStateErr):
		return "invalid_state"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &conflictErr):
		return "conflict"
	case errors.As(err, &storageErr):
		return "storage_error"
	default:
		return "error"
	}
}
