// Package datasource provides paginated row providers for grid hosts.
//
// A DataSource takes a committed grid view state and returns one page of
// rows plus the totals the host needs for page-count display and the
// page-range guard. The engine itself never calls a data source; the host
// forwards the view state after each navigation.
//
// Three implementations are included: Memory (in-process rows, with an
// optional expr-lang query predicate), SQL (PostgreSQL via pgx), and an S3
// dataset loader that feeds Memory.
package datasource

import (
	"context"

	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// Row is one data row keyed by column ID.
type Row map[string]any

// Page is one page of results.
type Page struct {
	Rows       []Row `json:"rows"`
	Total      int   `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// DataSource resolves a grid view state into a page of rows.
type DataSource interface {
	Fetch(ctx context.Context, view gridstate.TableViewState) (Page, error)
}

// totalPages computes the page count for a result size, 0 when empty.
func totalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
