package types

import (
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "modernc.org/sqlite/lib"
)

// Postgres SQLSTATE codes translated by Err.
const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

// InvalidURIError is returned when a database URI can't be used to open a
// database. The URI itself isn't part of the message, since it may contain
// credentials.
type InvalidURIError struct {
	Reason string
}

func (e InvalidURIError) Error() string {
	return "invalid database URI: " + e.Reason
}

// LoadError is returned when reading rows of a table fails.
type LoadError struct {
	Subject string
	Err     error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("failed loading %s: %s", e.Subject, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// ScanError is returned when a row can't be read into Go values, usually
// because a column holds data of an unexpected type.
type ScanError struct {
	Subject string
	Err     error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("failed scanning %s: %s", e.Subject, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// DuplicateError is returned when an inserted row violates a unique or primary
// key constraint.
type DuplicateError struct {
	Subject string
	Key     string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s already exists", e.Subject, e.Key)
}

// LockedError is returned when the database stays locked by another
// connection, past the SQLite busy timeout or the Postgres lock timeout.
type LockedError struct {
	Err error
}

func (e LockedError) Error() string {
	return fmt.Sprintf("database is locked by another connection: %s", e.Err)
}

func (e LockedError) Unwrap() error { return e.Err }

// Err translates errors of either database driver into the errors above.
// subject and key describe the affected row, and are only used for
// DuplicateError. Other errors are returned unchanged.
func Err(subject, key string, err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch code := sqliteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return DuplicateError{Subject: subject, Key: key}
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return LockedError{Err: err}
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return DuplicateError{Subject: subject, Key: key}
		case pgLockNotAvailable:
			return LockedError{Err: err}
		}
	}

	return err
}
