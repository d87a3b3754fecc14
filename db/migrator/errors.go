package migrator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDBAdmin is matched by every error this package defines, so that callers
// can distinguish schema management failures with errors.Is.
var ErrDBAdmin = errors.New("database administration error")

// InvalidVersionFormatError is returned when a version string is malformed, or
// isn't a known release.
type InvalidVersionFormatError struct {
	Version string
	Err     error
}

func (e *InvalidVersionFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid version '%s': %s", e.Version, e.Err)
	}
	return fmt.Sprintf("invalid version '%s': unknown release", e.Version)
}

// Unwrap returns the underlying parsing error, if any.
func (e *InvalidVersionFormatError) Unwrap() error { return e.Err }

// Is implements the errors.Is interface.
func (e *InvalidVersionFormatError) Is(target error) bool { return target == ErrDBAdmin }

// InvalidVersionTypeError is returned when a version is given as something
// other than a string.
type InvalidVersionTypeError struct {
	Value any
}

func (e *InvalidVersionTypeError) Error() string {
	return fmt.Sprintf("invalid version type %T (%v): must be a release string", e.Value, e.Value)
}

// Is implements the errors.Is interface.
func (e *InvalidVersionTypeError) Is(target error) bool { return target == ErrDBAdmin }

// UnknownOrdinalError is returned when an ordinal outside of the supported
// range is requested.
type UnknownOrdinalError struct {
	Ordinal  Ordinal
	Min, Max Ordinal
}

func (e *UnknownOrdinalError) Error() string {
	return fmt.Sprintf("unknown schema version %d: supported versions are %d to %d",
		e.Ordinal, e.Min, e.Max)
}

// Is implements the errors.Is interface.
func (e *UnknownOrdinalError) Is(target error) bool { return target == ErrDBAdmin }

// IntrospectionError is returned when the database catalog can't be queried.
type IntrospectionError struct {
	Err error
}

func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("failed inspecting database schema: %s", e.Err)
}

// Unwrap returns the underlying query error.
func (e *IntrospectionError) Unwrap() error { return e.Err }

// Is implements the errors.Is interface.
func (e *IntrospectionError) Is(target error) bool { return target == ErrDBAdmin }

// LedgerCorruptError is returned when the version ledger table exists, but
// its structure or contents are invalid.
type LedgerCorruptError struct {
	Table   string
	Missing []string
	Err     error
}

func (e *LedgerCorruptError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("version ledger table %s is corrupt: missing columns %s",
			e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("version ledger table %s is corrupt: %s", e.Table, e.Err)
}

// Unwrap returns the underlying error, if any.
func (e *LedgerCorruptError) Unwrap() error { return e.Err }

// Is implements the errors.Is interface.
func (e *LedgerCorruptError) Is(target error) bool { return target == ErrDBAdmin }

// AmbiguousSchemaStateError is returned when schema objects exist, but there
// is no version ledger to tell which version they belong to.
type AmbiguousSchemaStateError struct {
	Objects []string
}

func (e *AmbiguousSchemaStateError) Error() string {
	return fmt.Sprintf(
		"database contains schema objects (%s) but no version record; refusing to guess the schema version",
		strings.Join(e.Objects, ", "))
}

// Is implements the errors.Is interface.
func (e *AmbiguousSchemaStateError) Is(target error) bool { return target == ErrDBAdmin }

// VersionUndeterminableError is returned when the version of a database can't
// be determined from either its ledger or its physical schema.
type VersionUndeterminableError struct{}

func (e *VersionUndeterminableError) Error() string {
	return "unable to determine the database schema version: no version record found"
}

// Is implements the errors.Is interface.
func (e *VersionUndeterminableError) Is(target error) bool { return target == ErrDBAdmin }

// SchemaMismatchError is returned when the physical schema doesn't match the
// schema expected for a version.
type SchemaMismatchError struct {
	Ordinal Ordinal
	// Recorded is the ordinal found in the ledger, if it differs from Ordinal.
	Recorded Ordinal
	Missing  []string
	Extra    []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if e.Recorded != 0 && e.Recorded != e.Ordinal {
		parts = append(parts, fmt.Sprintf("database is at version %d", e.Recorded))
	}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing objects: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected objects: %s", strings.Join(e.Extra, ", ")))
	}

	return fmt.Sprintf("database schema doesn't match version %d: %s",
		e.Ordinal, strings.Join(parts, "; "))
}

// Is implements the errors.Is interface.
func (e *SchemaMismatchError) Is(target error) bool { return target == ErrDBAdmin }
