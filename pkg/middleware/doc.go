// Package middleware provides observability wrappers for grid event
// handling: Prometheus metrics and OpenTelemetry tracing.
//
// Both constructors return a server.Middleware and are registered through
// server.Config.Middlewares:
//
//	grid := server.New(server.Config{
//	    Source: src,
//	    Middlewares: []server.Middleware{
//	        middleware.Prometheus(),
//	        middleware.OpenTelemetry(),
//	    },
//	})
package middleware
