package middleware

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	herrors "github.com/vango-dev/headkit/internal/errors"
	"github.com/vango-dev/headkit/pkg/head"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "headkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "headkit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a head.Observer exporting Prometheus metrics.
type Metrics struct {
	resourcesTotal *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	initScripts    prometheus.Counter
}

var _ head.Observer = (*Metrics)(nil)

// Prometheus creates a Metrics observer and registers its collectors.
// Registering twice on the same registry panics, so create one per
// registry.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		resourcesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resources_total",
			Help:        "Stylesheets and scripts requested from the head renderer",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "outcome"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Head render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Head render phases that failed",
			ConstLabels: config.ConstLabels,
		}, []string{"phase", "code"}),

		initScripts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "init_scripts_total",
			Help:        "Initialization script fragments written",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ResourceEncoded implements head.Observer.
func (m *Metrics) ResourceEncoded(_ context.Context, ev head.ResourceEvent) {
	m.resourcesTotal.WithLabelValues(string(ev.Kind), string(ev.Outcome)).Inc()
}

// RenderCompleted implements head.Observer.
func (m *Metrics) RenderCompleted(_ context.Context, ev head.RenderEvent) {
	m.renderDuration.WithLabelValues(string(ev.Phase)).Observe(ev.Duration.Seconds())
	if ev.Phase == head.PhaseBegin {
		m.initScripts.Add(float64(ev.InitScripts))
	}
	if ev.Err != nil {
		m.renderErrors.WithLabelValues(string(ev.Phase), errorCode(ev.Err)).Inc()
	}
}

// errorCode returns a low cardinality label for err.
func errorCode(err error) string {
	if code := herrors.Code(err); code != "" {
		return code
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &netErr), errors.Is(err, io.ErrClosedPipe), errors.Is(err, io.ErrShortWrite):
		return "write"
	default:
		return "internal"
	}
}
