package context

import (
	"errors"
	"runtime/debug"
)

// VersionInfo is the build information of the application.
type VersionInfo struct {
	Semantic string
	Commit   string
	Dirty    bool
}

func (v *VersionInfo) String() string {
	if v.Commit == "" {
		return v.Semantic
	}

	commit := v.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if v.Dirty {
		commit += "-dirty"
	}

	return v.Semantic + " (" + commit + ")"
}

// GetVersion returns the application version from the embedded build
// information.
func GetVersion() (*VersionInfo, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("failed reading build information")
	}

	v := &VersionInfo{Semantic: bi.Main.Version}
	if v.Semantic == "" {
		v.Semantic = "(devel)"
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Commit = s.Value
		case "vcs.modified":
			v.Dirty = s.Value == "true"
		}
	}

	return v, nil
}
