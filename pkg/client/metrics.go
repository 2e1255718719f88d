package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics for a client.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "matchwire").
	Namespace string

	// Subsystem is the metrics subsystem (default: "client").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithMetricsConstLabels sets constant labels for all metrics.
func WithMetricsConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "matchwire",
		Subsystem: "client",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for one client. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	framesSent     *prometheus.CounterVec
	framesReceived *prometheus.CounterVec
	sendErrors     prometheus.Counter
	readErrors     prometheus.Counter
	eventsIngested prometheus.Counter
	eventsSkipped  prometheus.Counter
	subscriptions  prometheus.Gauge
}

// NewMetrics creates and registers the client metrics.
//
// Metrics exposed:
//   - matchwire_client_frames_sent_total: Counter of sent frames by command
//   - matchwire_client_frames_received_total: Counter of received frames by command
//   - matchwire_client_send_errors_total: Counter of transport send failures
//   - matchwire_client_read_errors_total: Counter of receive/decode failures
//   - matchwire_client_events_ingested_total: Counter of events merged into aggregates
//   - matchwire_client_events_skipped_total: Counter of self-echoed events skipped
//   - matchwire_client_active_subscriptions: Gauge of active topic subscriptions
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_sent_total",
			Help:        "Total frames sent to the broker",
			ConstLabels: config.ConstLabels,
		}, []string{"command"}),

		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_received_total",
			Help:        "Total frames received from the broker",
			ConstLabels: config.ConstLabels,
		}, []string{"command"}),

		sendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "send_errors_total",
			Help:        "Total transport send failures",
			ConstLabels: config.ConstLabels,
		}),

		readErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "read_errors_total",
			Help:        "Total receive failures and unparseable frames",
			ConstLabels: config.ConstLabels,
		}),

		eventsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_ingested_total",
			Help:        "Total events merged into game aggregates",
			ConstLabels: config.ConstLabels,
		}),

		eventsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_skipped_total",
			Help:        "Total self-authored event echoes skipped",
			ConstLabels: config.ConstLabels,
		}),

		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_subscriptions",
			Help:        "Number of active topic subscriptions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) recordFrameSent(command string) {
	if m != nil {
		m.framesSent.WithLabelValues(command).Inc()
	}
}

func (m *Metrics) recordFrameReceived(command string) {
	if m != nil {
		m.framesReceived.WithLabelValues(command).Inc()
	}
}

func (m *Metrics) recordSendError() {
	if m != nil {
		m.sendErrors.Inc()
	}
}

func (m *Metrics) recordReadError() {
	if m != nil {
		m.readErrors.Inc()
	}
}

func (m *Metrics) recordEventIngested() {
	if m != nil {
		m.eventsIngested.Inc()
	}
}

func (m *Metrics) recordEventSkipped() {
	if m != nil {
		m.eventsSkipped.Inc()
	}
}

func (m *Metrics) setSubscriptions(n int) {
	if m != nil {
		m.subscriptions.Set(float64(n))
	}
}
