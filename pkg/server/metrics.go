package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the session runtime.
// A nil *Metrics is valid everywhere and records nothing.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionsTotal   prometheus.Counter
	EventsReceived  prometheus.Counter
	StaleCallbacks  prometheus.Counter
	HandlerFailures prometheus.Counter
	HandlerDuration prometheus.Histogram
	CommandsSent    *prometheus.CounterVec
	Broadcasts      prometheus.Counter
	Navigations     prometheus.Counter
}

// MetricsOption configures metric construction.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace string
	registry  prometheus.Registerer
}

// WithNamespace sets the metric namespace. Default: "glint".
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) {
		c.namespace = ns
	}
}

// WithRegistry sets the registry metrics register with. Default:
// prometheus.DefaultRegisterer. Tests pass a fresh registry here so
// repeated construction never collides.
func WithRegistry(r prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) {
		c.registry = r
	}
}

// NewMetrics constructs and registers the runtime's instruments.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := &metricsConfig{
		namespace: "glint",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	factory := promauto.With(cfg.registry)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "active_sessions",
			Help:      "Number of currently connected sessions.",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "sessions_total",
			Help:      "Total sessions accepted since start.",
		}),
		EventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "events_received_total",
			Help:      "Total client events received.",
		}),
		StaleCallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "stale_callbacks_total",
			Help:      "Events rejected because their callback id was unknown.",
		}),
		HandlerFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "handler_failures_total",
			Help:      "Handler invocations that returned an error or panicked.",
		}),
		HandlerDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler execution time.",
			Buckets:   prometheus.DefBuckets,
		}),
		CommandsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "commands_sent_total",
			Help:      "Update commands sent, by command kind.",
		}, []string{"kind"}),
		Broadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "broadcasts_total",
			Help:      "Broadcast sweeps executed.",
		}),
		Navigations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "navigations_total",
			Help:      "Successful in-place navigations.",
		}),
	}
}
