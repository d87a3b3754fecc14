package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"

	"go.hackfix.me/dbadmin/db/types"
)

// DB wraps sql.DB with additional context, dialect and transaction
// functionality.
type DB struct {
	*sql.DB
	timeNow     func() time.Time
	dialect     types.Dialect
	busyTimeout time.Duration
}

var _ types.Querier = (*DB)(nil)

// Option is a function that allows configuring the DB.
type Option func(*DB)

// WithBusyTimeout sets the time SQLite waits for a locked database before
// failing. It has no effect on other dialects.
func WithBusyTimeout(dur time.Duration) Option {
	return func(d *DB) {
		d.busyTimeout = dur
	}
}

// Open creates and configures a new database connection from the given URI.
// Supported URIs are sqlite://<path>, file:<path>, a plain SQLite file path,
// and postgres:// or postgresql:// connection strings.
func Open(ctx context.Context, uri string, timeNow func() time.Time, opts ...Option) (*DB, error) {
	dialect, dsn, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	d := &DB{dialect: dialect, timeNow: timeNow}
	for _, opt := range opts {
		opt(d)
	}

	if dialect == types.DialectSQLite {
		dsn = sqliteDSN(dsn, d.busyTimeout)
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s database: %w", dialect, err)
	}
	d.DB = sqlDB

	if strings.Contains(dsn, "mode=memory") || strings.Contains(dsn, ":memory:") {
		// See https://github.com/mattn/go-sqlite3#faq
		d.SetMaxIdleConns(10)
		d.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	}

	if err = d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("failed connecting to %s database: %w", dialect, err)
	}

	return d, nil
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}

// Dialect returns the SQL dialect of the database.
func (d *DB) Dialect() types.Dialect {
	return d.dialect
}

// ExecContext executes a query without returning any rows. Placeholders are
// written as '?' regardless of the dialect.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.DB.ExecContext(ctx, rebind(d.dialect, query), args...) //nolint:wrapcheck // Wrapped by callers.
}

// QueryContext executes a query that returns rows. Placeholders are written
// as '?' regardless of the dialect.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.DB.QueryContext(ctx, rebind(d.dialect, query), args...) //nolint:wrapcheck // Wrapped by callers.
}

// QueryRowContext executes a query that is expected to return at most one row.
// Placeholders are written as '?' regardless of the dialect.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.DB.QueryRowContext(ctx, rebind(d.dialect, query), args...)
}

// Tx runs fn inside a single transaction. The transaction is committed if fn
// returns nil, and rolled back if it returns an error or panics.
func (d *DB) Tx(ctx context.Context, fn func(q types.Querier) error) (err error) {
	sqlTx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", types.Err("", "", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}

		if err != nil {
			if rerr := sqlTx.Rollback(); rerr != nil {
				err = errors.Join(err, fmt.Errorf("failed rolling back transaction: %w", rerr))
			}
			return
		}

		if cerr := sqlTx.Commit(); cerr != nil {
			err = fmt.Errorf("failed committing transaction: %w", types.Err("", "", cerr))
		}
	}()

	return fn(&tx{Tx: sqlTx, db: d})
}

// tx is a types.Querier scoped to a single transaction.
type tx struct {
	*sql.Tx
	db *DB
}

var _ types.Querier = (*tx)(nil)

func (t *tx) TimeNow() time.Time     { return t.db.TimeNow() }
func (t *tx) Dialect() types.Dialect { return t.db.dialect }

func (t *tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.Tx.ExecContext(ctx, rebind(t.db.dialect, query), args...) //nolint:wrapcheck // Wrapped by callers.
}

func (t *tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.Tx.QueryContext(ctx, rebind(t.db.dialect, query), args...) //nolint:wrapcheck // Wrapped by callers.
}

func (t *tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.Tx.QueryRowContext(ctx, rebind(t.db.dialect, query), args...)
}

func parseURI(uri string) (types.Dialect, string, error) {
	if uri == "" {
		return "", "", types.InvalidURIError{Reason: "database URI is required"}
	}

	scheme, rest, found := strings.Cut(uri, "://")
	if !found {
		// file:<path> and plain paths are both understood by the SQLite driver.
		return types.DialectSQLite, uri, nil
	}

	dialect, err := types.DialectFromString(scheme)
	if err != nil {
		return "", "", err
	}

	if dialect == types.DialectPostgres {
		return dialect, uri, nil
	}

	// sqlite:///abs/path keeps the leading slash, sqlite://rel/path doesn't.
	if rest == "" {
		return "", "", types.InvalidURIError{Reason: "missing SQLite database path"}
	}

	return dialect, rest, nil
}

func sqliteDSN(dsn string, busyTimeout time.Duration) string {
	pragmas := []string{"_pragma=foreign_keys(1)"}
	if busyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()))
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + strings.Join(pragmas, "&")
}

// rebind replaces '?' placeholders with the positional $N placeholders
// expected by PostgreSQL. Placeholders inside quoted literals are left as is.
func rebind(dialect types.Dialect, query string) string {
	if dialect != types.DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var (
		sb      strings.Builder
		n       int
		inQuote bool
	)
	sb.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == '?' && !inQuote:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}

	return sb.String()
}
