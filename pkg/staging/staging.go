// Package staging adds a "staged edit, explicit apply" interaction mode on
// top of the gridstate engine.
//
// Search and filter toolbars come in two flavors: instant surfaces push
// every edit straight into the engine (and the URL), while manual surfaces
// accumulate edits in a local staging area that becomes visible only when
// the user applies it (an explicit button, or Enter on a search field).
// Each surface (the search input, each filter group) picks its mode
// independently.
//
// Staged state never appears in the URL; only the committed engine state
// does. Applying flushes every staged value into the engine as one
// navigation patch and empties the staging area. A clear action resets
// both staged and committed state.
package staging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// Mode selects how a surface's edits reach the engine.
type Mode uint8

const (
	// Instant pushes every edit straight into the engine.
	Instant Mode = iota

	// Manual accumulates edits locally until an explicit apply.
	Manual
)

// Config configures a staging manager.
type Config struct {
	// Search is the mode of the search-input surface.
	Search Mode

	// FilterModes maps filter field (column ID) to its mode.
	// Fields not listed are Instant.
	FilterModes map[string]Mode

	// GlobalField is the search field routed to the engine's global
	// filter. Other search fields map to string column filters.
	GlobalField string

	// AfterApply, when set, runs after staged values are flushed into the
	// engine, while the in-progress flag is still held. Callers typically
	// hook data refetching here. It is awaited, not cancellable by the
	// manager; time it out via the context if needed.
	AfterApply func(ctx context.Context) error

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manager wraps an engine with per-surface staging.
type Manager struct {
	cfg    Config
	engine *gridstate.Engine
	log    *slog.Logger

	mu       sync.Mutex
	search   map[string]string   // staged search fields
	filters  map[string][]string // staged filter groups
	applying bool
	dropped  int // applies suppressed by the in-flight guard
}

// NewManager creates a staging manager around an engine. Staging starts
// empty.
func NewManager(cfg Config, engine *gridstate.Engine) *Manager {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		cfg:     cfg,
		engine:  engine,
		log:     log,
		search:  make(map[string]string),
		filters: make(map[string][]string),
	}
}

// searchMode returns the mode of the search surface.
func (m *Manager) searchMode() Mode { return m.cfg.Search }

// filterMode returns the mode of one filter group.
func (m *Manager) filterMode(field string) Mode {
	return m.cfg.FilterModes[field]
}

// SetSearch records a search edit for a field. Instant mode commits it to
// the engine immediately; manual mode only stages it.
func (m *Manager) SetSearch(field, value string) {
	if m.searchMode() == Instant {
		m.commitSearch(field, value)
		return
	}
	m.mu.Lock()
	m.search[field] = value
	m.mu.Unlock()
}

// commitSearch pushes one search value into the engine.
func (m *Manager) commitSearch(field, value string) {
	if field == m.cfg.GlobalField {
		m.engine.SetGlobalFilter(value)
		return
	}
	m.engine.UpdateColumnFilters(func(f gridstate.Filters) gridstate.Filters {
		v := gridstate.StringFilter(value)
		if v.IsZero() {
			delete(f, field)
		} else {
			f[field] = v
		}
		return f
	})
}

// SetFilter replaces the whole value set of a filter group.
func (m *Manager) SetFilter(field string, values []string) {
	if m.filterMode(field) == Instant {
		m.engine.UpdateColumnFilters(func(f gridstate.Filters) gridstate.Filters {
			if len(values) == 0 {
				delete(f, field)
			} else {
				f[field] = gridstate.ArrayFilter(values...)
			}
			return f
		})
		return
	}
	m.mu.Lock()
	cp := make([]string, len(values))
	copy(cp, values)
	m.filters[field] = cp
	m.mu.Unlock()
}

// ToggleFilter adds or removes one option of a filter group. Each toggle
// constructs a fresh value list; staged and committed state never share a
// backing array.
func (m *Manager) ToggleFilter(field, option string) {
	if m.filterMode(field) == Instant {
		m.engine.UpdateColumnFilters(func(f gridstate.Filters) gridstate.Filters {
			next := toggle(f[field].ListValues(), option)
			if len(next) == 0 {
				delete(f, field)
			} else {
				f[field] = gridstate.ArrayFilter(next...)
			}
			return f
		})
		return
	}

	m.mu.Lock()
	base, staged := m.filters[field]
	if !staged {
		base = m.engine.Filters()[field].ListValues()
	}
	m.filters[field] = toggle(base, option)
	m.mu.Unlock()
}

// toggle returns a fresh slice with option added or removed.
func toggle(values []string, option string) []string {
	next := make([]string, 0, len(values)+1)
	removed := false
	for _, v := range values {
		if v == option {
			removed = true
			continue
		}
		next = append(next, v)
	}
	if !removed {
		next = append(next, option)
	}
	return next
}

// SearchValue returns the value a search field should display: the staged
// value when one exists, the committed value otherwise.
func (m *Manager) SearchValue(field string) string {
	m.mu.Lock()
	if v, ok := m.search[field]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	if field == m.cfg.GlobalField {
		return m.engine.GlobalFilter()
	}
	return m.engine.Filters()[field].Str()
}

// FilterValues returns the values a filter group should display, staged
// over committed.
func (m *Manager) FilterValues(field string) []string {
	m.mu.Lock()
	if v, ok := m.filters[field]; ok {
		cp := make([]string, len(v))
		copy(cp, v)
		m.mu.Unlock()
		return cp
	}
	m.mu.Unlock()
	return m.engine.Filters()[field].ListValues()
}

// ApplyAll flushes every staged edit into the engine as one navigation
// patch, then runs AfterApply, then clears the staging area. A second call
// while one is in flight is a no-op: rapid double-clicks must not produce
// duplicate patches.
func (m *Manager) ApplyAll(ctx context.Context) error {
	m.mu.Lock()
	if m.applying {
		m.dropped++
		m.mu.Unlock()
		m.log.Debug("apply already in flight, dropping request")
		return nil
	}
	m.applying = true
	search := m.search
	filters := m.filters
	m.search = make(map[string]string)
	m.filters = make(map[string][]string)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.applying = false
		m.mu.Unlock()
	}()

	m.flush(search, filters)

	if m.cfg.AfterApply != nil {
		return m.cfg.AfterApply(ctx)
	}
	return nil
}

// flush merges staged values over the committed state and commits the
// result in one patch.
func (m *Manager) flush(search map[string]string, filters map[string][]string) {
	fs := gridstate.FilterSet{Columns: gridstate.Filters{}}
	for col, v := range m.engine.Filters() {
		fs.Columns[col] = v
	}

	for field, value := range search {
		if field == m.cfg.GlobalField {
			v := value
			fs.Global = &v
			continue
		}
		sv := gridstate.StringFilter(value)
		if sv.IsZero() {
			delete(fs.Columns, field)
		} else {
			fs.Columns[field] = sv
		}
	}
	for field, values := range filters {
		if len(values) == 0 {
			delete(fs.Columns, field)
		} else {
			fs.Columns[field] = gridstate.ArrayFilter(values...)
		}
	}

	m.engine.SetFilterSet(fs)
}

// ResetAll clears the staging area and all committed filters (column and
// global), resetting pagination to the first page. Usable from either
// mode.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	m.search = make(map[string]string)
	m.filters = make(map[string][]string)
	m.mu.Unlock()

	empty := ""
	fs := gridstate.FilterSet{Columns: gridstate.Filters{}}
	if m.engine.Config().GlobalFilter {
		fs.Global = &empty
	}
	m.engine.SetFilterSet(fs)
}

// DroppedApplies reports how many ApplyAll calls the in-flight guard has
// suppressed over the manager's lifetime.
func (m *Manager) DroppedApplies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// ClearStaged empties the staging area without touching committed state.
func (m *Manager) ClearStaged() {
	m.mu.Lock()
	m.search = make(map[string]string)
	m.filters = make(map[string][]string)
	m.mu.Unlock()
}

// HasActiveFilters reports whether any staged or committed filter or
// search value is non-empty. Display predicate only; no side effects.
func (m *Manager) HasActiveFilters() bool {
	m.mu.Lock()
	for _, v := range m.search {
		if !gridstate.StringFilter(v).IsZero() {
			m.mu.Unlock()
			return true
		}
	}
	for _, vs := range m.filters {
		if len(vs) > 0 {
			m.mu.Unlock()
			return true
		}
	}
	m.mu.Unlock()

	if len(m.engine.Filters()) > 0 {
		return true
	}
	return m.engine.GlobalFilter() != ""
}
