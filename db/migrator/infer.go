package migrator

// InferOrdinal returns the lowest ordinal whose canonical objects all exist in
// snap. It's used to pick a starting point for databases that have lost their
// version record. The returned bool is false if no version qualifies.
func InferOrdinal(reg *Registry, snap ObjectSet) (Ordinal, bool) {
	for o := reg.Min(); o <= reg.Current(); o++ {
		canon, _ := reg.Canonical(o)
		if canon.SubsetOf(snap) {
			return o, true
		}
	}
	return 0, false
}

// MatchOrdinal returns the highest ordinal whose canonical objects are exactly
// the objects in snap.
func MatchOrdinal(reg *Registry, snap ObjectSet) (Ordinal, bool) {
	for o := reg.Current(); o >= reg.Min(); o-- {
		canon, _ := reg.Canonical(o)
		if canon.Equal(snap) {
			return o, true
		}
	}
	return 0, false
}
