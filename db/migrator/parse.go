package migrator

import (
	"errors"

	"github.com/blang/semver/v4"
)

// Parse converts an externally supplied version into an ordinal. A nil value
// or an empty string resolve to the current ordinal. Strings must be known
// release strings in MAJOR.MINOR.PATCH form, and any other type is rejected.
func (r *Registry) Parse(v any) (Ordinal, error) {
	switch ver := v.(type) {
	case nil:
		return r.Current(), nil
	case string:
		return r.ParseRelease(ver)
	default:
		return 0, &InvalidVersionTypeError{Value: v}
	}
}

// ParseRelease converts a release string into an ordinal. An empty string
// resolves to the current ordinal.
func (r *Registry) ParseRelease(release string) (Ordinal, error) {
	if release == "" {
		return r.Current(), nil
	}

	sv, err := semver.Parse(release)
	if err != nil {
		return 0, &InvalidVersionFormatError{Version: release, Err: err}
	}
	if len(sv.Pre) > 0 || len(sv.Build) > 0 {
		return 0, &InvalidVersionFormatError{
			Version: release,
			Err:     errors.New("pre-release and build metadata are not supported"),
		}
	}

	o, ok := r.OrdinalFor(sv.String())
	if !ok {
		return 0, &InvalidVersionFormatError{Version: release}
	}

	return o, nil
}
