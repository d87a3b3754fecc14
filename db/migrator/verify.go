package migrator

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"go.hackfix.me/dbadmin/db/types"
)

// Verify checks that the physical schema of the database matches the schema of
// the given version exactly. If version is nil, the database must have a
// version record, and both the record and the schema must match the current
// version of the registry. Verify never modifies the database.
func (m *Manager) Verify(ctx context.Context, conn types.Querier, version any) error {
	o, recorded, err := m.resolve(ctx, conn, version)
	if err != nil {
		return err
	}

	expected, err := m.reg.Canonical(o)
	if err != nil {
		return err
	}
	actual, err := Snapshot(ctx, conn, m.reg)
	if err != nil {
		return err
	}

	missing, extra := lo.Difference(expected.Sorted(), actual.Sorted())
	if len(missing) > 0 || len(extra) > 0 || recorded != o {
		return &SchemaMismatchError{
			Ordinal:  o,
			Recorded: recorded,
			Missing:  missing,
			Extra:    extra,
		}
	}

	return nil
}

// ObjectStatus describes a tracked schema object in relation to a version.
type ObjectStatus struct {
	Name     string
	Expected bool
	Present  bool
}

// OK returns true if the object's presence matches the expectation.
func (s ObjectStatus) OK() bool {
	return s.Expected == s.Present
}

// Status returns the status of every tracked object that is either expected
// by the given version or physically present, sorted by name. If version is
// nil, the recorded version of the database is used.
func (m *Manager) Status(ctx context.Context, conn types.Querier, version any) (Ordinal, []ObjectStatus, error) {
	o, recorded, err := m.resolve(ctx, conn, version)
	if err != nil {
		return 0, nil, err
	}
	if version == nil {
		o = recorded
	}

	expected, err := m.reg.Canonical(o)
	if err != nil {
		return 0, nil, err
	}
	actual, err := Snapshot(ctx, conn, m.reg)
	if err != nil {
		return 0, nil, err
	}

	names := lo.Union(expected.Sorted(), actual.Sorted())
	slices.Sort(names)
	status := make([]ObjectStatus, 0, len(names))
	for _, name := range names {
		status = append(status, ObjectStatus{
			Name:     name,
			Expected: expected.Has(name),
			Present:  actual.Has(name),
		})
	}

	return o, status, nil
}

// resolve returns the ordinal a database is checked against, and the ordinal
// recorded in its ledger. If version is given, the ledger isn't consulted and
// both returned values are equal.
func (m *Manager) resolve(ctx context.Context, conn types.Querier, version any) (o, recorded Ordinal, err error) {
	if version != nil {
		o, err = m.reg.Parse(version)
		return o, o, err
	}

	rec, ok, err := ReadLedger(ctx, conn)
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, &VersionUndeterminableError{}
	}

	return m.reg.Current(), rec.Ordinal, nil
}
