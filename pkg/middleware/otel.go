package middleware

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/gridkit/pkg/server"
)

// Default tracer name for grid applications.
const defaultTracerName = "gridkit"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "gridkit").
	TracerName string

	// Filter determines which events to trace. Return true to trace the
	// event, false to skip. If nil, all events are traced.
	Filter func(ev server.Event) bool

	// AttributeExtractor extracts custom attributes per event.
	AttributeExtractor func(s *server.Session, ev server.Event) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(ev server.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(s *server.Session, ev server.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates middleware that traces every grid event.
//
// The middleware creates a span per event named "grid.<type>", carrying
// the session ID, the event's column or field where present, and the
// resulting query string. Errors are recorded and set the span status.
//
// The tracer comes from the global OpenTelemetry tracer provider;
// configure it in main() before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) server.Middleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)

	return func(next server.Handler) server.Handler {
		return func(ctx context.Context, s *server.Session, ev server.Event) error {
			if config.Filter != nil && !config.Filter(ev) {
				return next(ctx, s, ev)
			}

			attrs := []attribute.KeyValue{
				attribute.String("grid.session_id", s.ID),
				attribute.String("grid.event_type", string(ev.Type)),
			}
			if ev.Column != "" {
				attrs = append(attrs, attribute.String("grid.column", ev.Column))
			}
			if ev.Field != "" {
				attrs = append(attrs, attribute.String("grid.field", ev.Field))
			}
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(s, ev)...)
			}

			spanCtx, span := config.tracer.Start(
				ctx,
				fmt.Sprintf("grid.%s", ev.Type),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			err := next(spanCtx, s, ev)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.SetAttributes(attribute.String("grid.query", s.Query()))

			return err
		}
	}
}
