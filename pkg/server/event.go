package server

import (
	"context"
	"fmt"

	"github.com/vango-dev/gridkit/pkg/datasource"
)

// EventType identifies a client grid event.
type EventType string

// Client event types.
const (
	// EventSort sets or extends the sort order.
	EventSort EventType = "sort"

	// EventSearch edits a search field (may be staged).
	EventSearch EventType = "search"

	// EventFilter replaces one filter group's values (may be staged).
	EventFilter EventType = "filter"

	// EventToggle toggles one option of a filter group (may be staged).
	EventToggle EventType = "toggle"

	// EventApply commits all staged edits.
	EventApply EventType = "apply"

	// EventReset clears staged and committed filters.
	EventReset EventType = "reset"

	// EventPage navigates to a 1-based page.
	EventPage EventType = "page"

	// EventPageSize changes the page size.
	EventPageSize EventType = "pageSize"

	// EventSync replaces the session's parameters with the client's
	// current query string (initial load, back/forward navigation).
	EventSync EventType = "sync"
)

// Event is one client message.
type Event struct {
	Type EventType `json:"type"`

	// Sort fields.
	Column   string `json:"column,omitempty"`
	Desc     bool   `json:"desc,omitempty"`
	Additive bool   `json:"additive,omitempty"` // extend instead of replace (multi-sort)

	// Search / filter fields.
	Field  string   `json:"field,omitempty"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`

	// Pagination fields.
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`

	// Sync payload: the client's raw query string.
	Search string `json:"search,omitempty"`
}

// MessageType identifies a server message.
type MessageType string

// Server message types.
const (
	// MessageURL asks the client to update its URL query string.
	MessageURL MessageType = "url"

	// MessageData carries one page of rows.
	MessageData MessageType = "data"

	// MessageError reports a data-fetch failure.
	MessageError MessageType = "error"
)

// Message is one server-to-client frame.
type Message struct {
	Type MessageType `json:"type"`

	// URL payload.
	Query   string `json:"query,omitempty"`
	Replace bool   `json:"replace,omitempty"`

	// Data payload.
	Page *datasource.Page `json:"page,omitempty"`

	// Error payload.
	Error string `json:"error,omitempty"`
}

// Handler processes one client event on a session.
type Handler func(ctx context.Context, s *Session, ev Event) error

// Middleware wraps event handling (metrics, tracing).
type Middleware func(next Handler) Handler

// chain composes middlewares around a handler, first middleware outermost.
func chain(h Handler, mws []Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// unknownEventError is returned for event types the server does not know.
type unknownEventError struct {
	t EventType
}

func (e unknownEventError) Error() string {
	return fmt.Sprintf("unknown event type %q", e.t)
}
