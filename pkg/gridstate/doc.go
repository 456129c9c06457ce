// Package gridstate keeps a data grid's view state in sync with the URL
// query string.
//
// The canonical state of one grid instance (pagination, sorting, column
// filters, optional global filter) lives in the URL and nowhere else. The
// Engine re-derives a TableViewState from the current query parameters on
// demand and writes changes back as navigation patches, so deep links,
// reloads, and back/forward navigation all reproduce the same view.
//
// # Components
//
//   - Param / Patch: a tagged-union model of query parameter values
//     (string, string list, number, unset) validated at the codec boundary
//   - Config: the static per-grid codec configuration (parameter keys,
//     defaults, sort mode, filter fields)
//   - Codecs: EncodePagination/DecodePagination, EncodeSorting/DecodeSorting,
//     EncodeFilters/DecodeFilters, one pure pair per slice of state
//   - Engine: the orchestrator exposing Set/Update handlers and the
//     page-range guard
//
// # Behavior contract
//
// Every state change issues exactly one navigation patch that touches only
// the affected parameters. Parameters equal to their configured default are
// removed rather than written, keeping URLs minimal and shareable. Any
// operation other than a pagination change also resets the page parameter,
// so filtering or re-sorting never strands the user on a stale page.
//
// Decoding never fails. Malformed input (unparseable numbers, unknown sort
// tokens, broken percent-encoding) degrades to the configured defaults.
package gridstate
