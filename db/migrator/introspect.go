package migrator

import (
	"context"

	"go.hackfix.me/dbadmin/db/queries"
	"go.hackfix.me/dbadmin/db/types"
)

// Snapshot returns the set of objects tracked by the registry that physically
// exist in the database. Objects outside of the tracked namespace, including
// the version ledger, are ignored.
func Snapshot(ctx context.Context, q types.Querier, reg *Registry) (ObjectSet, error) {
	tables, err := queries.Tables(ctx, q)
	if err != nil {
		return nil, &IntrospectionError{Err: err}
	}

	tracked := reg.Tracked()
	snap := make(ObjectSet, len(tables))
	for name := range tables {
		if tracked.Has(name) {
			snap[name] = struct{}{}
		}
	}

	return snap, nil
}
