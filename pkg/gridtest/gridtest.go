// Package gridtest provides test helpers for grid state code.
//
// The central piece is Navigator, an in-memory stand-in for the host
// router: it applies navigation patches to a parameter set and records
// every request, so tests can assert on both the resulting URL and the
// navigation behavior (patch count, push vs replace).
//
// Example:
//
//	engine, nav := gridtest.NewEngine(t, gridstate.Config{}, "page=3")
//	engine.SetSorting(gridstate.Sorting{{ColumnID: "title"}})
//	if nav.Query() != "sort_by=title&sort_order=asc" { ... }
package gridtest

import (
	"net/url"
	"testing"

	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// Navigator records navigation requests and applies their patches to an
// in-memory parameter set.
type Navigator struct {
	values   url.Values
	Requests []gridstate.NavRequest
}

// NewNavigator creates a navigator seeded with a raw query string.
func NewNavigator(t *testing.T, initial string) *Navigator {
	t.Helper()
	v, err := url.ParseQuery(initial)
	if err != nil {
		t.Fatalf("gridtest: parse query %q: %v", initial, err)
	}
	return &Navigator{values: v}
}

// Navigate implements gridstate.Navigator.
func (n *Navigator) Navigate(req gridstate.NavRequest) {
	n.Requests = append(n.Requests, req)
	if req.Search == nil {
		return
	}
	n.values = gridstate.ApplyPatch(n.values, req.Search(n.values))
}

// Values returns the current parameter set.
func (n *Navigator) Values() url.Values { return n.values }

// Query returns the current parameters in canonical encoded form.
func (n *Navigator) Query() string { return n.values.Encode() }

// LastReplace reports whether the most recent navigation was a replace.
func (n *Navigator) LastReplace() bool {
	if len(n.Requests) == 0 {
		return false
	}
	return n.Requests[len(n.Requests)-1].Replace
}

// NewEngine builds an engine wired to a fresh recording navigator.
func NewEngine(t *testing.T, cfg gridstate.Config, initial string) (*gridstate.Engine, *Navigator) {
	t.Helper()
	nav := NewNavigator(t, initial)
	engine := gridstate.NewEngine(cfg, func() url.Values { return nav.values }, nav)
	return engine, nav
}
