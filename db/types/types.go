package types

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Querier exposes only methods for running SQL queries, and some helper functions.
type Querier interface {
	TimeNow() time.Time
	Dialect() Dialect
	ExecContext(ctx context.Context, sql string, arguments ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect is the SQL flavor spoken by the underlying database engine.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectFromString returns the Dialect matching s, or an error if it's not
// supported.
func DialectFromString(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres, "postgresql":
		return DialectPostgres, nil
	default:
		return "", InvalidURIError{Reason: fmt.Sprintf("unsupported database dialect '%s'", s)}
	}
}

// DriverName returns the database/sql driver name registered for the dialect.
func (d Dialect) DriverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}
