package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/gridkit/pkg/server"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "gridkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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
		Namespace: "gridkit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for grid event handling.
type metrics struct {
	eventsTotal   *prometheus.CounterVec
	eventDuration *prometheus.HistogramVec
	patchesSent   prometheus.Counter
	corrections   prometheus.Counter
	droppedApply  prometheus.Counter
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of grid events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "url_patches_total",
			Help:        "Total number of URL patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		corrections: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "page_corrections_total",
			Help:        "Total number of out-of-range page corrections",
			ConstLabels: config.ConstLabels,
		}),

		droppedApply: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "applies_dropped_total",
			Help:        "Total number of apply requests suppressed by the in-flight guard",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that collects Prometheus metrics for grid
// events.
//
// Metrics collected:
//   - gridkit_events_total: Counter of events by type and status
//   - gridkit_event_duration_seconds: Histogram of event processing duration
//   - gridkit_url_patches_total: Counter of URL patches sent to clients
//   - gridkit_page_corrections_total: Counter of out-of-range page corrections
//   - gridkit_applies_dropped_total: Counter of suppressed concurrent applies
//
// Example:
//
//	grid := server.New(server.Config{
//	    Source:      src,
//	    Middlewares: []server.Middleware{middleware.Prometheus()},
//	})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) server.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initMetrics(config)

	return func(next server.Handler) server.Handler {
		return func(ctx context.Context, s *server.Session, ev server.Event) error {
			start := time.Now()
			patchesBefore, correctionsBefore := s.Stats()
			droppedBefore := s.Staging().DroppedApplies()

			err := next(ctx, s, ev)

			m.eventDuration.WithLabelValues(string(ev.Type)).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
			}
			m.eventsTotal.WithLabelValues(string(ev.Type), status).Inc()

			patches, corrections := s.Stats()
			m.patchesSent.Add(float64(patches - patchesBefore))
			m.corrections.Add(float64(corrections - correctionsBefore))
			m.droppedApply.Add(float64(s.Staging().DroppedApplies() - droppedBefore))

			return err
		}
	}
}
