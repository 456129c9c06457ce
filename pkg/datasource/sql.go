package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vango-dev/gridkit/pkg/gridstate"
)

// SQLConfig configures a PostgreSQL-backed data source.
//
// Columns is an allowlist mapping grid column IDs to SQL column names;
// sort entries and filters referencing unknown columns are skipped rather
// than rejected, matching the engine's degrade-to-default philosophy.
// All values are passed as query parameters; identifiers go through
// pgx.Identifier sanitization.
type SQLConfig struct {
	Pool  *pgxpool.Pool
	Table string

	// Columns maps column ID to SQL column name.
	Columns map[string]string

	// SearchColumns are the SQL columns scanned by the global filter
	// (ILIKE, OR-ed together).
	SearchColumns []string

	// DefaultOrder is appended when the view carries no usable sort,
	// e.g. "created_at DESC". Optional.
	DefaultOrder string

	Logger *slog.Logger
}

// SQL is a DataSource backed by a PostgreSQL table.
type SQL struct {
	cfg SQLConfig
	log *slog.Logger
}

// NewSQL creates a SQL data source.
func NewSQL(cfg SQLConfig) (*SQL, error) {
	if cfg.Pool == nil {
		return nil, errors.New("datasource: sql pool is required")
	}
	if cfg.Table == "" {
		return nil, errors.New("datasource: sql table is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &SQL{cfg: cfg, log: log}, nil
}

// Fetch implements DataSource. It issues a count query and a page query
// built from the view state: global filter as ILIKE across the search
// columns, string filters as ILIKE on their column, array filters as
// membership, sorting mapped through the column allowlist.
func (s *SQL) Fetch(ctx context.Context, view gridstate.TableViewState) (Page, error) {
	where, args := s.buildWhere(view)
	table := pgx.Identifier{s.cfg.Table}.Sanitize()

	var total int
	countSQL := "SELECT count(*) FROM " + table + where
	if err := s.cfg.Pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return Page{}, fmt.Errorf("count %s: %w", s.cfg.Table, err)
	}

	size := view.Pagination.PageSize
	offset := view.Pagination.PageIndex * size

	pageSQL := "SELECT * FROM " + table + where + s.buildOrder(view.Sorting) +
		fmt.Sprintf(" LIMIT %d OFFSET %d", size, offset)

	rows, err := s.cfg.Pool.Query(ctx, pageSQL, args...)
	if err != nil {
		return Page{}, fmt.Errorf("query %s: %w", s.cfg.Table, err)
	}
	defer rows.Close()

	out, err := collectRows(rows)
	if err != nil {
		return Page{}, fmt.Errorf("scan %s: %w", s.cfg.Table, err)
	}

	return Page{Rows: out, Total: total, TotalPages: totalPages(total, size)}, nil
}

// buildWhere assembles the WHERE clause and its parameters.
func (s *SQL) buildWhere(view gridstate.TableViewState) (string, []any) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if g := view.GlobalFilter; g != "" && len(s.cfg.SearchColumns) > 0 {
		ph := next("%" + g + "%")
		var ors []string
		for _, col := range s.cfg.SearchColumns {
			ors = append(ors, pgx.Identifier{col}.Sanitize()+" ILIKE "+ph)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	for colID, fv := range view.Filters {
		sqlCol, ok := s.cfg.Columns[colID]
		if !ok {
			s.log.Debug("skipping filter on unmapped column", "column", colID)
			continue
		}
		ident := pgx.Identifier{sqlCol}.Sanitize()
		switch fv.Kind() {
		case gridstate.FilterArray:
			conds = append(conds, ident+" = ANY("+next(fv.ListValues())+")")
		default:
			conds = append(conds, ident+" ILIKE "+next("%"+fv.Str()+"%"))
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildOrder assembles the ORDER BY clause from the sort order, skipping
// entries that are not in the column allowlist.
func (s *SQL) buildOrder(sorting gridstate.Sorting) string {
	var parts []string
	for _, entry := range sorting {
		sqlCol, ok := s.cfg.Columns[entry.ColumnID]
		if !ok {
			s.log.Debug("skipping sort on unmapped column", "column", entry.ColumnID)
			continue
		}
		dir := " ASC"
		if entry.Desc {
			dir = " DESC"
		}
		parts = append(parts, pgx.Identifier{sqlCol}.Sanitize()+dir)
	}
	if len(parts) == 0 {
		if s.cfg.DefaultOrder != "" {
			return " ORDER BY " + s.cfg.DefaultOrder
		}
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// collectRows scans all rows into the generic Row shape.
func collectRows(rows pgx.Rows) ([]Row, error) {
	fields := rows.FieldDescriptions()
	out := make([]Row, 0, 32)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
