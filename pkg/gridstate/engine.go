package gridstate

import (
	"log/slog"
	"net/url"
)

// Engine orchestrates the URL-backed view state of one grid instance.
//
// The engine owns no state of its own: every read re-derives the
// TableViewState from the current query parameters, and every change is
// issued as a single navigation patch through the host-supplied Navigator.
// State changes are therefore observed by re-deriving from the URL, which
// keeps deep links and back/forward navigation correct for free.
//
// All operations are synchronous and run on the caller's goroutine; the
// host serializes handler invocations (one logical writer at a time).
type Engine struct {
	cfg    Config
	source func() url.Values
	nav    Navigator
	log    *slog.Logger
}

// NewEngine creates an engine. source returns the current query parameters
// (typically the host router's parsed search); nav receives navigation
// patches.
func NewEngine(cfg Config, source func() url.Values, nav Navigator) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		source: source,
		nav:    nav,
		log:    cfg.Logger,
	}
}

// Config returns the engine's codec configuration (defaults filled in).
func (e *Engine) Config() Config { return e.cfg }

// DecodeView derives a full view state from raw query parameters without
// an engine. Hosts serving stateless requests use this to run the same
// codecs an engine would.
func DecodeView(cfg Config, values url.Values) TableViewState {
	cfg = cfg.withDefaults()
	return TableViewState{
		Pagination:   cfg.DecodePagination(values),
		Sorting:      cfg.DecodeSorting(values),
		Filters:      cfg.DecodeFilters(values),
		GlobalFilter: cfg.DecodeGlobalFilter(values),
	}
}

// View derives the full view state from the current URL.
func (e *Engine) View() TableViewState {
	values := e.source()
	return TableViewState{
		Pagination:   e.cfg.DecodePagination(values),
		Sorting:      e.cfg.DecodeSorting(values),
		Filters:      e.cfg.DecodeFilters(values),
		GlobalFilter: e.cfg.DecodeGlobalFilter(values),
	}
}

// Pagination derives the current pagination window.
func (e *Engine) Pagination() Pagination {
	return e.cfg.DecodePagination(e.source())
}

// Sorting derives the current sort order.
func (e *Engine) Sorting() Sorting {
	return e.cfg.DecodeSorting(e.source())
}

// Filters derives the current column filters.
func (e *Engine) Filters() Filters {
	return e.cfg.DecodeFilters(e.source())
}

// GlobalFilter derives the current global filter value.
func (e *Engine) GlobalFilter() string {
	return e.cfg.DecodeGlobalFilter(e.source())
}

// SetPagination navigates to a new pagination window. This is the one
// operation that does not reset the page parameter.
func (e *Engine) SetPagination(p Pagination) {
	e.navigate(e.cfg.EncodePagination(p), false)
}

// UpdatePagination applies a functional update to the pagination window.
func (e *Engine) UpdatePagination(fn func(Pagination) Pagination) {
	e.SetPagination(fn(e.Pagination()))
}

// SetSorting navigates to a new sort order and resets to the first page.
// The patch unsets the inactive sort mode's parameters, so switching
// between single and multi encodings is self-cleaning.
func (e *Engine) SetSorting(s Sorting) {
	patch := e.cfg.EncodeSorting(s)
	patch[e.cfg.PageKey] = Unset
	e.navigate(patch, false)
}

// UpdateSorting applies a functional update to the sort order.
func (e *Engine) UpdateSorting(fn func(Sorting) Sorting) {
	e.SetSorting(fn(e.Sorting()))
}

// SetColumnFilters navigates to a new filter set and resets to the first
// page, regardless of the resulting filter content.
func (e *Engine) SetColumnFilters(f Filters) {
	patch := e.cfg.EncodeFilters(f)
	patch[e.cfg.PageKey] = Unset
	e.navigate(patch, false)
}

// UpdateColumnFilters applies a functional update to the filter set. The
// callback receives a copy; mutating it does not affect committed state
// until the update is applied.
func (e *Engine) UpdateColumnFilters(fn func(Filters) Filters) {
	e.SetColumnFilters(fn(e.Filters().clone()))
}

// SetGlobalFilter navigates to a new global filter value and resets to the
// first page. A no-op unless global filtering is enabled in the config.
func (e *Engine) SetGlobalFilter(s string) {
	if !e.cfg.GlobalFilter {
		e.log.Debug("global filter disabled for this grid, ignoring set")
		return
	}
	patch := e.cfg.EncodeGlobalFilter(s)
	patch[e.cfg.PageKey] = Unset
	e.navigate(patch, false)
}

// UpdateGlobalFilter applies a functional update to the global filter.
func (e *Engine) UpdateGlobalFilter(fn func(string) string) {
	if !e.cfg.GlobalFilter {
		e.log.Debug("global filter disabled for this grid, ignoring update")
		return
	}
	e.SetGlobalFilter(fn(e.GlobalFilter()))
}

// FilterSet is a combined filter change: the whole column filter set plus,
// optionally, the global filter. Used to commit several staged edits as
// one navigation patch.
type FilterSet struct {
	Columns Filters

	// Global replaces the global filter when non-nil.
	Global *string
}

// SetFilterSet navigates to a combined filter change in one patch,
// resetting to the first page.
func (e *Engine) SetFilterSet(fs FilterSet) {
	patch := e.cfg.EncodeFilters(fs.Columns)
	if fs.Global != nil {
		patch.merge(e.cfg.EncodeGlobalFilter(*fs.Global))
	}
	patch[e.cfg.PageKey] = Unset
	e.navigate(patch, false)
}

// navigate issues exactly one navigation call for a logical change. The
// patch is merged by the host into the previous full parameter set, so
// unrelated parameters are never dropped.
func (e *Engine) navigate(patch Patch, replace bool) {
	if e.nav == nil {
		return
	}
	e.nav.Navigate(NavRequest{
		Search:  func(url.Values) Patch { return patch },
		Replace: replace,
	})
}
