package gridstate

import "log/slog"

// Default parameter names and values. All of them are overridable per grid
// through Config.
const (
	DefaultPageKey         = "page"
	DefaultPageSizeKey     = "pageSize"
	DefaultGlobalFilterKey = "filter"
	DefaultSortByKey       = "sort_by"
	DefaultSortOrderKey    = "sort_order"
	DefaultSortKey         = "sort"
	DefaultSortDelimiter   = ","

	DefaultPage     = 1
	DefaultPageSize = 10
)

// SortMode selects between the two mutually exclusive sort encodings.
type SortMode uint8

const (
	// SortSingle encodes at most one sort column as a scalar pair
	// (sort_by=name, sort_order=asc|desc).
	SortSingle SortMode = iota

	// SortMulti encodes an ordered sort list as one delimited parameter
	// (sort=-a,b), a leading '-' marking descending.
	SortMulti
)

// FilterField declares one filterable column: which URL parameter carries
// it, the value shape, and optional custom transforms. Fields are static
// configuration and are not mutated at runtime.
type FilterField struct {
	// ColumnID is the grid column this field filters.
	ColumnID string

	// SearchKey is the URL parameter name. Defaults to ColumnID.
	SearchKey string

	// Kind is the declared value shape.
	Kind FilterKind

	// Serialize/Deserialize transform string filter values on their way
	// to/from the URL. Identity when nil. Used only for FilterString.
	Serialize   func(string) string
	Deserialize func(string) string

	// SerializeList/DeserializeList are the array-kind equivalents,
	// operating on the whole value list. Identity when nil.
	SerializeList   func([]string) []string
	DeserializeList func([]string) []string
}

// key returns the URL parameter name for the field.
func (f FilterField) key() string {
	if f.SearchKey != "" {
		return f.SearchKey
	}
	return f.ColumnID
}

// Config is the static codec configuration for one grid instance.
// The zero value is usable: defaults are filled in by NewEngine.
type Config struct {
	// Pagination keys and defaults.
	PageKey         string
	PageSizeKey     string
	DefaultPage     int
	DefaultPageSize int

	// Sorting.
	SortMode      SortMode
	SortByKey     string // single mode
	SortOrderKey  string // single mode
	SortKey       string // multi mode
	SortDelimiter string // multi mode
	// DefaultSort is the sorting assumed when the URL carries none.
	// In single mode only the first entry is considered.
	DefaultSort Sorting

	// Filter fields, one per filterable column.
	Filters []FilterField

	// Global filter support. The value is whitespace-trimmed on both
	// encode and decode unless DisableGlobalTrim is set.
	GlobalFilter      bool
	GlobalFilterKey   string
	DisableGlobalTrim bool

	// Logger receives decode diagnostics (shape mismatches, dropped sort
	// tokens). slog.Default() when nil. Diagnostics are Debug level; the
	// codecs never fail.
	Logger *slog.Logger
}

// withDefaults returns the config with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.PageKey == "" {
		c.PageKey = DefaultPageKey
	}
	if c.PageSizeKey == "" {
		c.PageSizeKey = DefaultPageSizeKey
	}
	if c.DefaultPage <= 0 {
		c.DefaultPage = DefaultPage
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = DefaultPageSize
	}
	if c.SortByKey == "" {
		c.SortByKey = DefaultSortByKey
	}
	if c.SortOrderKey == "" {
		c.SortOrderKey = DefaultSortOrderKey
	}
	if c.SortKey == "" {
		c.SortKey = DefaultSortKey
	}
	if c.SortDelimiter == "" {
		c.SortDelimiter = DefaultSortDelimiter
	}
	if c.GlobalFilterKey == "" {
		c.GlobalFilterKey = DefaultGlobalFilterKey
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// field looks up a filter field declaration by column ID.
func (c Config) field(columnID string) (FilterField, bool) {
	for _, f := range c.Filters {
		if f.ColumnID == columnID {
			return f, true
		}
	}
	return FilterField{}, false
}
