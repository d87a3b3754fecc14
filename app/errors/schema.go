package errors

import (
	"errors"

	"go.hackfix.me/dbadmin/db/migrator"
)

// Metadata keys of schema errors.
const (
	KeyVersion         = "version"
	KeyRecordedVersion = "recorded_version"
	KeyMissing         = "missing"
	KeyExtra           = "extra"
	KeyObjects         = "objects"
	KeyTable           = "table"
	KeyHint            = "hint"
)

// Schema adds the details of schema version errors as metadata. Other errors
// are returned unchanged.
func Schema(err error) error {
	var (
		mismatchErr  *migrator.SchemaMismatchError
		ambiguousErr *migrator.AmbiguousSchemaStateError
		corruptErr   *migrator.LedgerCorruptError
		undetErr     *migrator.VersionUndeterminableError
	)
	switch {
	case errors.As(err, &mismatchErr):
		fields := []any{KeyVersion, mismatchErr.Ordinal}
		if mismatchErr.Recorded != 0 && mismatchErr.Recorded != mismatchErr.Ordinal {
			fields = append(fields, KeyRecordedVersion, mismatchErr.Recorded)
		}
		if len(mismatchErr.Missing) > 0 {
			fields = append(fields, KeyMissing, mismatchErr.Missing)
		}
		if len(mismatchErr.Extra) > 0 {
			fields = append(fields, KeyExtra, mismatchErr.Extra)
		}
		return With(err, fields...)
	case errors.As(err, &ambiguousErr):
		return With(err, KeyObjects, ambiguousErr.Objects,
			KeyHint, "run the create command to adopt the existing schema")
	case errors.As(err, &corruptErr):
		fields := []any{KeyTable, corruptErr.Table}
		if len(corruptErr.Missing) > 0 {
			fields = append(fields, KeyMissing, corruptErr.Missing)
		}
		return With(err, fields...)
	case errors.As(err, &undetErr):
		return With(err, KeyHint, "run the create command to record the schema version")
	}

	return err
}
