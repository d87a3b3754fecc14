package cli

import (
	"errors"
	"reflect"

	"github.com/alecthomas/kong"

	"go.hackfix.me/dbadmin/xtime"
)

// DurationMapper parses durations with the extended units of xtime, e.g. "2d"
// or "1w".
type DurationMapper struct{}

var _ kong.Mapper = (*DurationMapper)(nil)

// Decode implements the kong.Mapper interface.
func (DurationMapper) Decode(kctx *kong.DecodeContext, target reflect.Value) error {
	var value string
	err := kctx.Scan.PopValueInto("duration", &value)
	if err != nil {
		return err //nolint:wrapcheck // Kong adds the flag context.
	}

	dur, err := xtime.ParseDuration(value)
	if err != nil {
		return err //nolint:wrapcheck // Kong adds the flag context.
	}
	if dur < 0 {
		return errors.New("duration must not be negative")
	}

	target.SetInt(int64(dur))

	return nil
}
