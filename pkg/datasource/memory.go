package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// Memory is an in-process data source. Filtering follows the admin-grid
// conventions: the global filter is a case-insensitive substring match
// OR-ed across the configured search fields, string column filters match
// as substrings on their column, and array filters match set membership.
type Memory struct {
	mu           sync.RWMutex
	rows         []Row
	searchFields []string
	queryProg    *vm.Program
	log          *slog.Logger
}

// MemoryOption configures a Memory source.
type MemoryOption func(*Memory)

// WithSearchFields sets the fields scanned by the global filter.
// When unset, every field of a row is scanned.
func WithSearchFields(fields ...string) MemoryOption {
	return func(m *Memory) {
		m.searchFields = fields
	}
}

// WithMemoryLogger sets the logger (slog.Default() otherwise).
func WithMemoryLogger(log *slog.Logger) MemoryOption {
	return func(m *Memory) {
		m.log = log
	}
}

// NewMemory creates a memory source over the given rows. The slice is
// retained; callers should not mutate it afterwards.
func NewMemory(rows []Row, opts ...MemoryOption) *Memory {
	m := &Memory{rows: rows, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Replace swaps the backing rows.
func (m *Memory) Replace(rows []Row) {
	m.mu.Lock()
	m.rows = rows
	m.mu.Unlock()
}

// SetQuery installs an advanced row predicate compiled with expr-lang,
// e.g. `status == "active" && age > 30`. Row fields are available as
// variables. An empty expression clears the predicate.
func (m *Memory) SetQuery(src string) error {
	if strings.TrimSpace(src) == "" {
		m.mu.Lock()
		m.queryProg = nil
		m.mu.Unlock()
		return nil
	}
	prog, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile query: %w", err)
	}
	m.mu.Lock()
	m.queryProg = prog
	m.mu.Unlock()
	return nil
}

// Fetch implements DataSource.
func (m *Memory) Fetch(_ context.Context, view gridstate.TableViewState) (Page, error) {
	m.mu.RLock()
	rows := m.rows
	prog := m.queryProg
	searchFields := m.searchFields
	m.mu.RUnlock()

	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !m.matches(row, view, prog, searchFields) {
			continue
		}
		filtered = append(filtered, row)
	}

	sortRows(filtered, view.Sorting)

	total := len(filtered)
	size := view.Pagination.PageSize
	start := view.Pagination.PageIndex * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Rows:       filtered[start:end],
		Total:      total,
		TotalPages: totalPages(total, size),
	}, nil
}

// matches applies global filter, column filters, and the query predicate.
func (m *Memory) matches(row Row, view gridstate.TableViewState, prog *vm.Program, searchFields []string) bool {
	if g := view.GlobalFilter; g != "" && !m.matchesGlobal(row, g, searchFields) {
		return false
	}

	for col, fv := range view.Filters {
		switch fv.Kind() {
		case gridstate.FilterArray:
			if !containsString(fv.ListValues(), stringify(row[col])) {
				return false
			}
		default:
			needle := strings.ToLower(fv.Str())
			if !strings.Contains(strings.ToLower(stringify(row[col])), needle) {
				return false
			}
		}
	}

	if prog != nil {
		out, err := expr.Run(prog, map[string]any(row))
		if err != nil {
			m.log.Debug("query predicate failed for row, excluding it", "error", err)
			return false
		}
		keep, _ := out.(bool)
		if !keep {
			return false
		}
	}

	return true
}

func (m *Memory) matchesGlobal(row Row, needle string, searchFields []string) bool {
	needle = strings.ToLower(needle)
	if len(searchFields) == 0 {
		for _, v := range row {
			if strings.Contains(strings.ToLower(stringify(v)), needle) {
				return true
			}
		}
		return false
	}
	for _, f := range searchFields {
		if strings.Contains(strings.ToLower(stringify(row[f])), needle) {
			return true
		}
	}
	return false
}

// sortRows sorts in place by the given order, primary column first.
// The sort is stable so ties keep their incoming order.
func sortRows(rows []Row, sorting gridstate.Sorting) {
	if len(sorting) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range sorting {
			c := compareValues(rows[i][s.ColumnID], rows[j][s.ColumnID])
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders two row values: nil first, then numerics, times,
// bools, and strings. Mixed types fall back to string comparison.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
