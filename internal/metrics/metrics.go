package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Configures the collectors.
type Config struct {

	// Namespace prefixes every metric name (default: "inkd").
	Namespace string

	// Registry the collectors are registered with (default: a new,
	// private registry).
	Registry prometheus.Registerer

	// Buckets of the dispatch duration histogram, in seconds
	// (default: prometheus.DefBuckets).
	Buckets []float64
}

// Configures the collectors.
type Option func(*Config)

// Sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// Sets the registry the collectors are registered with.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Sets the dispatch duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// Collectors for sessions and the commands they carry.
type Metrics struct {
	sessionsTotal    prometheus.Counter
	activeSessions   prometheus.Gauge
	commandsTotal    *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	backendErrors    *prometheus.CounterVec
	syncAcks         prometheus.Counter
	dispatchDuration *prometheus.HistogramVec
}

// Creates and registers the collectors.
//
// Panics if the collectors are already registered with the registry, as
// promauto does.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "inkd",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sessions_total",
			Help:      "Total number of client connections served",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_sessions",
			Help:      "Number of client connections currently being served",
		}),

		commandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "commands_total",
			Help:      "Total number of commands dispatched",
		}, []string{"command"}),

		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of lines that failed to decode",
		}),

		backendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "backend_errors_total",
			Help:      "Total number of commands rejected by the rendering surface",
		}, []string{"command"}),

		syncAcks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "sync_acks_total",
			Help:      "Total number of Sync acknowledgments written",
		}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time taken to apply a command, in seconds",
			Buckets:   cfg.Buckets,
		}, []string{"command"}),
	}
}

// Records a newly accepted connection.
func (m *Metrics) SessionOpened() {
	m.sessionsTotal.Inc()
	m.activeSessions.Inc()
}

// Records the end of a connection.
func (m *Metrics) SessionClosed() {
	m.activeSessions.Dec()
}

// Records a line that could not be decoded.
func (m *Metrics) DecodeFailed() {
	m.decodeErrors.Inc()
}

// Records a dispatched command and how long it took.
func (m *Metrics) CommandDispatched(command string, d time.Duration) {
	m.commandsTotal.WithLabelValues(command).Inc()
	m.dispatchDuration.WithLabelValues(command).Observe(d.Seconds())
}

// Records a command rejected by the rendering surface.
func (m *Metrics) BackendFailed(command string) {
	m.backendErrors.WithLabelValues(command).Inc()
}

// Records a Sync acknowledgment.
func (m *Metrics) SyncAcknowledged() {
	m.syncAcks.Inc()
}
