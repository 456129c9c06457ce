// Package server hosts grid state over HTTP and WebSocket.
//
// The server is the host role from the gridstate contract: it owns the
// canonical query parameters for each connected client, supplies them to a
// gridstate.Engine, applies the engine's navigation patches, and mirrors
// every patch to the client as a URL message (push or replace) so the
// browser URL stays the single source of truth.
//
// # Live sessions
//
// Each WebSocket connection gets a Session. The session's read loop
// decodes client events (sort, filter, search, paginate, apply, reset,
// sync), runs them through the engine and the staging manager, refetches
// from the data source, runs the page-range guard against the fetched page
// count, and flushes the queued URL patches plus one data frame back to
// the client in the same tick.
//
// # Plain HTTP
//
// GET /data serves one page for the view state encoded in the request's
// query string, using the same codecs with no session. Deep links and
// server-side rendering use this path.
//
// # Middleware
//
// Event handling can be wrapped with Middleware (metrics, tracing); see
// pkg/middleware for the provided implementations.
package server
