package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromMetrics holds the Prometheus collectors exposed on /metrics.
// Each instance owns its registry so tests can create as many as they need.
type PromMetrics struct {
	registry *prometheus.Registry

	// CircuitBreakerState tracks breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState *prometheus.GaugeVec
	// CircuitBreakerFailures counts calls that failed through a breaker
	CircuitBreakerFailures *prometheus.CounterVec
	// SweepRuns counts auto transition sweeps by result
	SweepRuns *prometheus.CounterVec
	// AutoTransitions counts orders moved by the sweeper, by target status
	AutoTransitions *prometheus.CounterVec
	// OrdersPlaced counts checkouts by payment method
	OrdersPlaced *prometheus.CounterVec
	// EventsForwarded counts domain events published to the broker, by result
	EventsForwarded *prometheus.CounterVec
	// HTTPRequests counts served requests by method, route and status
	HTTPRequests *prometheus.CounterVec
	// HTTPDuration observes request latency by method and route
	HTTPDuration *prometheus.HistogramVec
	// HTTPInFlight tracks requests currently being served
	HTTPInFlight prometheus.Gauge
}

// NewPromMetrics creates the collectors under namespace
func NewPromMetrics(namespace string) *PromMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PromMetrics{
		registry: reg,
		CircuitBreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"circuit_name"}),
		CircuitBreakerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_failures_total",
			Help:      "Total number of calls that failed through a circuit breaker",
		}, []string{"circuit_name"}),
		SweepRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_transition_sweeps_total",
			Help:      "Total number of auto transition sweeps",
		}, []string{"result"}),
		AutoTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_transitions_total",
			Help:      "Total number of orders moved by the auto transition sweeper",
		}, []string{"status"}),
		OrdersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed",
		}, []string{"payment_method"}),
		EventsForwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_forwarded_total",
			Help:      "Total number of domain events forwarded to the message broker",
		}, []string{"event_type", "result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),
	}
}

// Registry returns the registry backing the collectors
func (m *PromMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PromMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
