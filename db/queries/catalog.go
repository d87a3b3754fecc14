package queries

import (
	"context"
	"fmt"
	"strings"

	"go.hackfix.me/dbadmin/db/types"
)

// Tables returns a set of all table names in the database. Internal SQLite
// tables are excluded.
func Tables(ctx context.Context, d types.Querier) (map[string]struct{}, error) {
	var query string
	switch d.Dialect() {
	case types.DialectPostgres:
		query = `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'`
	default:
		query = `SELECT name FROM sqlite_master WHERE type = 'table'`
	}

	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed querying tables: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, types.ScanError{Subject: "table", Err: err}
		}

		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		tables[name] = struct{}{}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading tables: %w", err)
	}

	return tables, nil
}

// TableExists returns true if a table with the given name exists.
func TableExists(ctx context.Context, d types.Querier, table string) (bool, error) {
	var query string
	switch d.Dialect() {
	case types.DialectPostgres:
		query = `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ?`
	default:
		query = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	}

	var n int
	if err := d.QueryRowContext(ctx, query, table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed checking table %s: %w", table, err)
	}

	return n > 0, nil
}

// Columns returns the column names of the given table, in the order they're
// defined. It returns an empty slice if the table doesn't exist.
func Columns(ctx context.Context, d types.Querier, table string) ([]string, error) {
	var query string
	switch d.Dialect() {
	case types.DialectPostgres:
		query = `SELECT column_name FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ?
			ORDER BY ordinal_position`
	default:
		query = `SELECT name FROM pragma_table_info(?) ORDER BY cid`
	}

	rows, err := d.QueryContext(ctx, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed querying columns of table %s: %w", table, err)
	}
	defer rows.Close()

	cols := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, types.ScanError{Subject: "column", Err: err}
		}
		cols = append(cols, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading columns of table %s: %w", table, err)
	}

	return cols, nil
}
