// Package gridkit provides the public API for URL-backed data grids.
//
// This is the recommended import for most applications:
//
//	import "github.com/vango-dev/gridkit"
//
// Usage:
//
//	engine := gridkit.NewEngine(gridkit.Config{
//	    Filters: []gridkit.FilterField{
//	        {ColumnID: "status", Kind: gridkit.FilterArray},
//	    },
//	    GlobalFilter: true,
//	}, currentQuery, nav)
//
//	engine.UpdateSorting(func(s gridkit.Sorting) gridkit.Sorting {
//	    return gridkit.Sorting{{ColumnID: "createdAt", Desc: true}}
//	})
package gridkit

import (
	"github.com/vango-dev/gridkit/pkg/gridstate"
	"github.com/vango-dev/gridkit/pkg/staging"
)

// =============================================================================
// View state (re-export from pkg/gridstate)
// =============================================================================

// TableViewState is the decoded view of a grid: pagination, sorting,
// column filters and the global filter.
type TableViewState = gridstate.TableViewState

// Pagination is a zero-based page window.
type Pagination = gridstate.Pagination

// Sorting is an ordered list of sort entries, primary column first.
type Sorting = gridstate.Sorting

// SortEntry is one sorted column.
type SortEntry = gridstate.SortEntry

// Filters maps column IDs to filter values.
type Filters = gridstate.Filters

// FilterValue is an immutable filter value, either a string or a value
// list.
type FilterValue = gridstate.FilterValue

// StringFilter builds a string-kind filter value.
var StringFilter = gridstate.StringFilter

// ArrayFilter builds an array-kind filter value.
var ArrayFilter = gridstate.ArrayFilter

// FilterKind is the declared shape of a filter field.
type FilterKind = gridstate.FilterKind

// Filter kinds.
const (
	FilterString = gridstate.FilterString
	FilterArray  = gridstate.FilterArray
)

// =============================================================================
// Configuration
// =============================================================================

// Config is the static codec configuration for one grid instance.
type Config = gridstate.Config

// FilterField declares one filterable column.
type FilterField = gridstate.FilterField

// SortMode selects between the two sort encodings.
type SortMode = gridstate.SortMode

// Sort modes.
const (
	SortSingle = gridstate.SortSingle
	SortMulti  = gridstate.SortMulti
)

// =============================================================================
// Engine and navigation
// =============================================================================

// Engine orchestrates the URL-backed view state of one grid instance.
type Engine = gridstate.Engine

// NewEngine creates an engine over the host's query parameters.
var NewEngine = gridstate.NewEngine

// DecodeView derives a view state from raw query parameters without an
// engine.
var DecodeView = gridstate.DecodeView

// FilterSet is a combined column-filters-plus-global change applied as
// one navigation patch.
type FilterSet = gridstate.FilterSet

// Param is one query parameter assignment in a patch.
type Param = gridstate.Param

// Patch maps parameter names to assignments.
type Patch = gridstate.Patch

// Unset removes a parameter.
var Unset = gridstate.Unset

// NavRequest is one navigation issued by an engine.
type NavRequest = gridstate.NavRequest

// Navigator applies navigation requests to the host's URL.
type Navigator = gridstate.Navigator

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc = gridstate.NavigatorFunc

// ApplyPatch merges a patch into a parameter set, returning a new set.
var ApplyPatch = gridstate.ApplyPatch

// ResetTarget selects where an out-of-range page is corrected to.
type ResetTarget = gridstate.ResetTarget

// Reset targets.
const (
	ResetFirst = gridstate.ResetFirst
	ResetLast  = gridstate.ResetLast
)

// =============================================================================
// Staging (re-export from pkg/staging)
// =============================================================================

// StagingManager accumulates filter edits for an explicit apply.
type StagingManager = staging.Manager

// StagingConfig configures a staging manager.
type StagingConfig = staging.Config

// StagingMode selects how a surface's edits reach the engine.
type StagingMode = staging.Mode

// NewStagingManager creates a staging manager around an engine.
var NewStagingManager = staging.NewManager

// Staging modes.
const (
	Instant = staging.Instant
	Manual  = staging.Manual
)
