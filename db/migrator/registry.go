package migrator

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samber/lo"
)

// Ordinal is the internal, monotonically increasing number identifying a
// schema version.
type Ordinal int

// ObjectSet is a set of schema object names.
type ObjectSet map[string]struct{}

// NewObjectSet returns a set containing the given names.
func NewObjectSet(names ...string) ObjectSet {
	s := make(ObjectSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has returns true if name is in the set.
func (s ObjectSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in the set in lexical order.
func (s ObjectSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// SubsetOf returns true if every name in s is also in other.
func (s ObjectSet) SubsetOf(other ObjectSet) bool {
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// Equal returns true if both sets contain the same names.
func (s ObjectSet) Equal(other ObjectSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Version is a single entry of the version history.
type Version struct {
	Ordinal Ordinal
	// Releases are the external release strings that share this schema,
	// ordered from oldest to newest.
	Releases []string
	// Objects is the canonical set of schema object names that must exist in a
	// database at this version.
	Objects []string
}

// Registry is the immutable, linear history of schema versions. It's safe for
// concurrent use.
type Registry struct {
	versions []Version // indexed by ordinal - min
	sets     []ObjectSet
	releases map[string]Ordinal
	tracked  ObjectSet
}

// NewRegistry validates the given versions and returns a new Registry. The
// versions must have unique, contiguous ordinals and unique release strings.
func NewRegistry(versions ...Version) (*Registry, error) {
	if len(versions) == 0 {
		return nil, errors.New("at least one version is required")
	}

	versions = slices.Clone(versions)
	slices.SortFunc(versions, func(a, b Version) int { return int(a.Ordinal - b.Ordinal) })

	r := &Registry{
		versions: make([]Version, 0, len(versions)),
		sets:     make([]ObjectSet, 0, len(versions)),
		releases: make(map[string]Ordinal),
		tracked:  make(ObjectSet),
	}

	for i, v := range versions {
		if v.Ordinal < 1 {
			return nil, fmt.Errorf("invalid ordinal %d: must be positive", v.Ordinal)
		}
		if i > 0 && v.Ordinal != versions[i-1].Ordinal+1 {
			return nil, fmt.Errorf("version ordinals must be unique and contiguous: %d follows %d",
				v.Ordinal, versions[i-1].Ordinal)
		}
		if len(v.Releases) == 0 {
			return nil, fmt.Errorf("version %d has no releases", v.Ordinal)
		}
		for _, rel := range v.Releases {
			if prev, ok := r.releases[rel]; ok {
				return nil, fmt.Errorf("release %s is mapped to both version %d and %d", rel, prev, v.Ordinal)
			}
			r.releases[rel] = v.Ordinal
		}

		set := NewObjectSet(v.Objects...)
		for n := range set {
			r.tracked[n] = struct{}{}
		}

		r.versions = append(r.versions, Version{
			Ordinal:  v.Ordinal,
			Releases: slices.Clone(v.Releases),
			Objects:  set.Sorted(),
		})
		r.sets = append(r.sets, set)
	}

	return r, nil
}

// Min returns the oldest supported ordinal.
func (r *Registry) Min() Ordinal {
	return r.versions[0].Ordinal
}

// Current returns the newest ordinal.
func (r *Registry) Current() Ordinal {
	return r.versions[len(r.versions)-1].Ordinal
}

// Contains returns true if o is a supported ordinal.
func (r *Registry) Contains(o Ordinal) bool {
	return o >= r.Min() && o <= r.Current()
}

// OrdinalFor returns the ordinal a release string maps to.
func (r *Registry) OrdinalFor(release string) (Ordinal, bool) {
	o, ok := r.releases[release]
	return o, ok
}

// Release returns the newest release string of the given ordinal.
func (r *Registry) Release(o Ordinal) (string, error) {
	v, err := r.version(o)
	if err != nil {
		return "", err
	}
	return v.Releases[len(v.Releases)-1], nil
}

// Canonical returns a copy of the canonical object set of the given ordinal.
func (r *Registry) Canonical(o Ordinal) (ObjectSet, error) {
	if !r.Contains(o) {
		return nil, r.unknown(o)
	}
	return maps.Clone(r.sets[o-r.Min()]), nil
}

// Tracked returns the names of all objects managed by any version.
func (r *Registry) Tracked() ObjectSet {
	return maps.Clone(r.tracked)
}

// Introduced returns the objects that exist at ordinal o, but not at o-1. At
// the minimum ordinal, this is the whole canonical set.
func (r *Registry) Introduced(o Ordinal) ([]string, error) {
	cur, prev, err := r.step(o)
	if err != nil {
		return nil, err
	}
	added, _ := lo.Difference(cur, prev)
	slices.Sort(added)
	return added, nil
}

// Removed returns the objects that exist at ordinal o-1, but not at o.
func (r *Registry) Removed(o Ordinal) ([]string, error) {
	cur, prev, err := r.step(o)
	if err != nil {
		return nil, err
	}
	_, removed := lo.Difference(cur, prev)
	slices.Sort(removed)
	return removed, nil
}

// Versions returns all versions, ordered from oldest to newest.
func (r *Registry) Versions() []Version {
	out := make([]Version, len(r.versions))
	for i, v := range r.versions {
		out[i] = Version{
			Ordinal:  v.Ordinal,
			Releases: slices.Clone(v.Releases),
			Objects:  slices.Clone(v.Objects),
		}
	}
	return out
}

func (r *Registry) version(o Ordinal) (Version, error) {
	if !r.Contains(o) {
		return Version{}, r.unknown(o)
	}
	return r.versions[o-r.Min()], nil
}

// step returns the object lists of ordinal o and its predecessor.
func (r *Registry) step(o Ordinal) (cur, prev []string, err error) {
	v, err := r.version(o)
	if err != nil {
		return nil, nil, err
	}
	if o > r.Min() {
		prev = r.versions[o-1-r.Min()].Objects
	}
	return v.Objects, prev, nil
}

func (r *Registry) unknown(o Ordinal) error {
	return &UnknownOrdinalError{Ordinal: o, Min: r.Min(), Max: r.Current()}
}
