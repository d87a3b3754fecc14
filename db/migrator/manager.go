package migrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"go.hackfix.me/dbadmin/db/types"
)

// Object is a schema object, such as a table, that can be created and
// dropped.
type Object interface {
	Name() string
	Create(ctx context.Context, q types.Querier, ifNotExists bool) error
	Drop(ctx context.Context, q types.Querier, ifExists bool) error
}

// Catalog provides the concrete definitions of the objects referenced by a
// Registry.
type Catalog interface {
	Object(name string) (Object, bool)
}

// Conn is a database connection that supports transactions.
type Conn interface {
	types.Querier
	Tx(ctx context.Context, fn func(q types.Querier) error) error
}

// Manager moves the schema of a database between versions of a Registry.
// It holds no connection state, and is safe for concurrent use, though
// migrations of the same database must not run concurrently.
type Manager struct {
	reg     *Registry
	catalog Catalog
	logger  *slog.Logger
}

// NewManager returns a new Manager. Every object tracked by the registry must
// be defined in the catalog.
func NewManager(reg *Registry, catalog Catalog, opts ...Option) (*Manager, error) {
	if reg == nil {
		return nil, fmt.Errorf("version registry is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("schema object catalog is required")
	}

	for _, name := range reg.Tracked().Sorted() {
		if _, ok := catalog.Object(name); !ok {
			return nil, fmt.Errorf("schema object %s is not defined in the catalog", name)
		}
	}

	m := &Manager{reg: reg, catalog: catalog}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Registry returns the version registry of the Manager.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// Migrate initializes an empty database at the target ordinal, or moves a
// database with a version record to it, one version at a time. Each step is
// applied in its own transaction, together with its version record.
// Targets below the minimum ordinal are clamped to it.
//
// If the database has schema objects but no version record, Migrate fails
// with an AmbiguousSchemaStateError. See Ensure for an alternative.
func (m *Manager) Migrate(ctx context.Context, conn Conn, target Ordinal) error {
	return m.migrate(ctx, conn, target, false)
}

// Ensure is like Migrate, but databases with schema objects and no version
// record are assumed to be at the version inferred from their objects (see
// InferOrdinal), or at the minimum version if none can be inferred, and
// migrated from there.
func (m *Manager) Ensure(ctx context.Context, conn Conn, target Ordinal) error {
	return m.migrate(ctx, conn, target, true)
}

// Upgrade migrates the database forward to the given version. A nil version
// means the current version. It does nothing if the database is already at or
// above the target version.
func (m *Manager) Upgrade(ctx context.Context, conn Conn, version any) error {
	target, err := m.reg.Parse(version)
	if err != nil {
		return err
	}

	rec, ok, err := ReadLedger(ctx, conn)
	if err != nil {
		return err
	}
	if ok && rec.Ordinal >= target {
		m.logger.Info("schema is already up to date",
			"version", rec.Ordinal, "target", target)
		return nil
	}

	return m.Migrate(ctx, conn, target)
}

// Downgrade migrates the database backward to the given version. A nil or
// empty version means the minimum supported version, which is also the lowest
// version a database can be downgraded to. It does nothing if the database is
// already at or below the target version.
func (m *Manager) Downgrade(ctx context.Context, conn Conn, version any) error {
	target := m.reg.Min()
	if version != nil && version != "" {
		var err error
		if target, err = m.reg.Parse(version); err != nil {
			return err
		}
	}

	rec, ok, err := ReadLedger(ctx, conn)
	if err != nil {
		return err
	}
	if !ok {
		return &VersionUndeterminableError{}
	}
	if rec.Ordinal <= target {
		m.logger.Info("schema is already at or below the target version",
			"version", rec.Ordinal, "target", target)
		return nil
	}

	return m.Migrate(ctx, conn, target)
}

// CurrentVersion returns the schema version of the database. If there's no
// version record, the version whose objects exactly match the physical schema
// is returned. It fails with a VersionUndeterminableError otherwise.
func (m *Manager) CurrentVersion(ctx context.Context, conn types.Querier) (Ordinal, error) {
	rec, ok, err := ReadLedger(ctx, conn)
	if err != nil {
		return 0, err
	}
	if ok {
		return rec.Ordinal, nil
	}

	snap, err := Snapshot(ctx, conn, m.reg)
	if err != nil {
		return 0, err
	}
	if o, found := MatchOrdinal(m.reg, snap); found {
		return o, nil
	}

	return 0, &VersionUndeterminableError{}
}

func (m *Manager) migrate(ctx context.Context, conn Conn, target Ordinal, infer bool) error {
	if target < m.reg.Min() {
		m.logger.Info("target version is below the minimum supported version; clamping",
			"target", target, "min", m.reg.Min())
		target = m.reg.Min()
	}
	if !m.reg.Contains(target) {
		return m.reg.unknown(target)
	}

	rec, ok, err := ReadLedger(ctx, conn)
	if err != nil {
		return err
	}

	current := rec.Ordinal
	if !ok {
		snap, err := Snapshot(ctx, conn, m.reg)
		if err != nil {
			return err
		}

		if len(snap) == 0 {
			return m.create(ctx, conn, target)
		}
		if !infer {
			return &AmbiguousSchemaStateError{Objects: snap.Sorted()}
		}

		inferred, found := InferOrdinal(m.reg, snap)
		if !found {
			inferred = m.reg.Min()
		}
		m.logger.Warn("database has no version record; assuming version inferred from its objects",
			"inferred", inferred, "exact", found, "objects", snap.Sorted())
		if err = m.adopt(ctx, conn, inferred); err != nil {
			return err
		}
		current = inferred
	}

	if !m.reg.Contains(current) {
		return m.reg.unknown(current)
	}

	switch {
	case current == target:
		return m.repair(ctx, conn, target)
	case current < target:
		for k := current + 1; k <= target; k++ {
			if err = m.upgradeStep(ctx, conn, k); err != nil {
				return err
			}
		}
	default:
		for k := current; k > target; k-- {
			if err = m.downgradeStep(ctx, conn, k); err != nil {
				return err
			}
		}
	}

	return nil
}

// create initializes the schema of the target version and records it.
func (m *Manager) create(ctx context.Context, conn Conn, target Ordinal) error {
	canon, err := m.reg.Canonical(target)
	if err != nil {
		return err
	}

	err = conn.Tx(ctx, func(q types.Querier) error {
		if err := m.createObjects(ctx, q, canon.Sorted()); err != nil {
			return err
		}
		_, err := WriteLedger(ctx, q, m.reg, target)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed creating schema version %d: %w", target, err)
	}

	m.logger.Info("created database schema", "version", target, "objects", len(canon))

	return nil
}

// adopt records the inferred version of a database without a version record,
// creating any of its objects that are missing.
func (m *Manager) adopt(ctx context.Context, conn Conn, o Ordinal) error {
	err := conn.Tx(ctx, func(q types.Querier) error {
		snap, err := Snapshot(ctx, q, m.reg)
		if err != nil {
			return err
		}
		canon, err := m.reg.Canonical(o)
		if err != nil {
			return err
		}
		if err = m.createObjects(ctx, q, missing(canon, snap)); err != nil {
			return err
		}
		_, err = WriteLedger(ctx, q, m.reg, o)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed recording inferred schema version %d: %w", o, err)
	}

	return nil
}

// repair re-creates any missing objects of the target version, without
// recording a new version.
func (m *Manager) repair(ctx context.Context, conn Conn, target Ordinal) error {
	var created []string
	err := conn.Tx(ctx, func(q types.Querier) error {
		snap, err := Snapshot(ctx, q, m.reg)
		if err != nil {
			return err
		}
		canon, err := m.reg.Canonical(target)
		if err != nil {
			return err
		}

		created = missing(canon, snap)
		return m.createObjects(ctx, q, created)
	})
	if err != nil {
		return fmt.Errorf("failed repairing schema version %d: %w", target, err)
	}

	if len(created) > 0 {
		m.logger.Info("re-created missing schema objects", "version", target, "created", created)
	} else {
		m.logger.Debug("schema is up to date", "version", target)
	}

	return nil
}

// upgradeStep moves the database from ordinal k-1 to k. Objects removed at k
// are dropped, and objects introduced at k are created. Any other canonical
// object of k that is missing is re-created as well.
func (m *Manager) upgradeStep(ctx context.Context, conn Conn, k Ordinal) error {
	var introduced, repaired, dropped []string
	err := conn.Tx(ctx, func(q types.Querier) error {
		snap, err := Snapshot(ctx, q, m.reg)
		if err != nil {
			return err
		}
		canon, err := m.reg.Canonical(k)
		if err != nil {
			return err
		}
		removed, err := m.reg.Removed(k)
		if err != nil {
			return err
		}
		added, err := m.reg.Introduced(k)
		if err != nil {
			return err
		}

		dropped = present(removed, snap)
		if err = m.dropObjects(ctx, q, dropped); err != nil {
			return err
		}
		introduced = lo.Filter(added, func(name string, _ int) bool { return !snap.Has(name) })
		if err = m.createObjects(ctx, q, introduced); err != nil {
			return err
		}
		repaired, _ = lo.Difference(missing(canon, snap), added)
		if err = m.createObjects(ctx, q, repaired); err != nil {
			return err
		}

		_, err = WriteLedger(ctx, q, m.reg, k)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed upgrading schema from version %d to %d: %w", k-1, k, err)
	}

	m.logger.Info("upgraded schema", "from", k-1, "to", k,
		"introduced", introduced, "dropped", dropped)
	if len(repaired) > 0 {
		m.logger.Warn("re-created missing schema objects", "version", k, "created", repaired)
	}

	return nil
}

// downgradeStep moves the database from ordinal k to k-1. Only the objects
// that don't belong to k-1 are dropped, and objects that k removed are
// re-created.
func (m *Manager) downgradeStep(ctx context.Context, conn Conn, k Ordinal) error {
	var created, dropped []string
	err := conn.Tx(ctx, func(q types.Querier) error {
		snap, err := Snapshot(ctx, q, m.reg)
		if err != nil {
			return err
		}
		cur, err := m.reg.Canonical(k)
		if err != nil {
			return err
		}
		prev, err := m.reg.Canonical(k - 1)
		if err != nil {
			return err
		}

		onlyCur, _ := lo.Difference(cur.Sorted(), prev.Sorted())
		dropped = present(onlyCur, snap)
		if err = m.dropObjects(ctx, q, dropped); err != nil {
			return err
		}
		created = missing(prev, snap)
		if err = m.createObjects(ctx, q, created); err != nil {
			return err
		}

		_, err = WriteLedger(ctx, q, m.reg, k-1)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed downgrading schema from version %d to %d: %w", k, k-1, err)
	}

	m.logger.Info("downgraded schema", "from", k, "to", k-1, "created", created, "dropped", dropped)

	return nil
}

func (m *Manager) createObjects(ctx context.Context, q types.Querier, names []string) error {
	for _, name := range names {
		obj, err := m.object(name)
		if err != nil {
			return err
		}
		if err = obj.Create(ctx, q, true); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	}
	return nil
}

func (m *Manager) dropObjects(ctx context.Context, q types.Querier, names []string) error {
	for _, name := range names {
		obj, err := m.object(name)
		if err != nil {
			return err
		}
		if err = obj.Drop(ctx, q, true); err != nil {
			return fmt.Errorf("failed dropping %s: %w", name, err)
		}
	}
	return nil
}

func (m *Manager) object(name string) (Object, error) { //nolint:ireturn // Catalog objects are opaque.
	obj, ok := m.catalog.Object(name)
	if !ok {
		return nil, fmt.Errorf("schema object %s is not defined in the catalog", name)
	}
	return obj, nil
}

// missing returns the names in want that aren't in have, sorted.
func missing(want, have ObjectSet) []string {
	var out []string
	for _, name := range want.Sorted() {
		if !have.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// present returns the names that are in have, preserving their order.
func present(names []string, have ObjectSet) []string {
	return lo.Filter(names, func(name string, _ int) bool { return have.Has(name) })
}
