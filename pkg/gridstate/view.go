package gridstate

import "strings"

// Pagination is the 0-based page window of a grid view.
// The URL carries the 1-based page number; PageIndex = urlPage - 1.
type Pagination struct {
	PageIndex int
	PageSize  int
}

// SortEntry is one column of a sort order.
type SortEntry struct {
	ColumnID string
	Desc     bool
}

// Sorting is an ordered sort specification, primary column first.
// In single-sort mode its length is at most one.
type Sorting []SortEntry

// FilterKind is the declared shape of a filter field's value.
type FilterKind uint8

const (
	// FilterString is a free-text filter holding one string.
	FilterString FilterKind = iota

	// FilterArray is a discrete filter holding a set of selected values.
	FilterArray
)

// String returns the kind name for diagnostics.
func (k FilterKind) String() string {
	if k == FilterArray {
		return "array"
	}
	return "string"
}

// FilterValue is a column filter value: a non-empty string or a non-empty
// list of strings. The zero value means "no filter"; empty filters are
// never materialized in Filters or the URL.
type FilterValue struct {
	kind FilterKind
	str  string
	list []string
}

// StringFilter returns a free-text filter value.
func StringFilter(s string) FilterValue {
	return FilterValue{kind: FilterString, str: s}
}

// ArrayFilter returns a discrete filter value. The slice is copied; filter
// values are immutable once constructed so staged and committed state
// never alias.
func ArrayFilter(values ...string) FilterValue {
	cp := make([]string, len(values))
	copy(cp, values)
	return FilterValue{kind: FilterArray, list: cp}
}

// Kind returns the value's shape.
func (v FilterValue) Kind() FilterKind { return v.kind }

// Str returns the string value ("" for array filters).
func (v FilterValue) Str() string { return v.str }

// ListValues returns a copy of the selected values (nil for string filters).
func (v FilterValue) ListValues() []string {
	if v.kind != FilterArray {
		return nil
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp
}

// IsZero reports whether the value represents "no filter".
func (v FilterValue) IsZero() bool {
	if v.kind == FilterArray {
		return len(v.list) == 0
	}
	return strings.TrimSpace(v.str) == ""
}

// Filters maps column IDs to their active filter values. Absent keys mean
// no filter; zero values are never stored.
type Filters map[string]FilterValue

// clone returns a deep-enough copy (FilterValue is immutable).
func (f Filters) clone() Filters {
	cp := make(Filters, len(f))
	for k, v := range f {
		cp[k] = v
	}
	return cp
}

// TableViewState is the canonical, URL-backed state of one grid instance.
type TableViewState struct {
	Pagination   Pagination
	Sorting      Sorting
	Filters      Filters
	GlobalFilter string
}
