package errors

import (
	"errors"
	"maps"
)

// StructuredError is an error with metadata, which is rendered as log fields
// by Log.
type StructuredError struct {
	err      error
	metadata map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	return e.err.Error()
}

// Unwrap returns the wrapped error.
func (e *StructuredError) Unwrap() error {
	return e.err
}

// Metadata returns a copy of the metadata map.
func (e *StructuredError) Metadata() map[string]any {
	return maps.Clone(e.metadata)
}

// With adds key/value pairs of metadata to an error. If err already carries
// metadata, the new fields are merged into it, replacing existing keys.
func With(err error, fields ...any) *StructuredError {
	if len(fields)%2 != 0 {
		panic("an even number of fields is required")
	}

	serr := &StructuredError{err: err, metadata: make(map[string]any, len(fields)/2)}
	var prev *StructuredError
	if errors.As(err, &prev) {
		serr.err = prev.err
		maps.Copy(serr.metadata, prev.metadata)
	}

	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			panic("keys must be strings")
		}
		serr.metadata[key] = fields[i+1]
	}

	return serr
}
