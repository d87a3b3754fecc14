package errors

import (
	"errors"
	"log/slog"
	"slices"
	"sort"
)

// Schema error fields are logged in this order, before any other field.
var fieldOrder = []string{
	KeyVersion, KeyRecordedVersion, KeyMissing, KeyExtra, KeyObjects, KeyTable,
}

// Log logs an error using the default slog logger, rendering its metadata as
// fields if it's a StructuredError.
func Log(err error) {
	slog.Error(err.Error(), fields(err)...)
}

// fields returns the metadata of err as slog key/value pairs. Known schema
// error keys come first, then other keys sorted by name, and the hint last.
func fields(err error) []any {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		return nil
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		if k != KeyHint && !slices.Contains(fieldOrder, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	keys = append(slices.Clone(fieldOrder), keys...)
	keys = append(keys, KeyHint)

	args := make([]any, 0, len(serr.metadata)*2)
	for _, k := range keys {
		if v, ok := serr.metadata[k]; ok {
			args = append(args, k, v)
		}
	}

	return args
}
