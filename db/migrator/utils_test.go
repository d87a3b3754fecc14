package migrator_test

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.hackfix.me/dbadmin/db"
	"go.hackfix.me/dbadmin/db/migrator"
	"go.hackfix.me/dbadmin/db/types"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

// testVersions is a history where object b is removed in version 3, and added
// back in version 4.
func testVersions() []migrator.Version {
	return []migrator.Version{
		{Ordinal: 1, Releases: []string{"1.0.0"}, Objects: []string{"a", "b"}},
		{Ordinal: 2, Releases: []string{"2.0.0", "2.0.1"}, Objects: []string{"a", "b", "c"}},
		{Ordinal: 3, Releases: []string{"3.0.0"}, Objects: []string{"a", "c", "d"}},
		{Ordinal: 4, Releases: []string{"4.0.0"}, Objects: []string{"a", "b", "c", "d"}},
	}
}

func newTestRegistry(t *testing.T) *migrator.Registry {
	t.Helper()
	reg, err := migrator.NewRegistry(testVersions()...)
	require.NoError(t, err)
	return reg
}

// testTable is a minimal schema object backed by a single-column table.
type testTable struct {
	name      string
	createErr error
}

func (tt *testTable) Name() string { return tt.name }

func (tt *testTable) Create(ctx context.Context, q types.Querier, ifNotExists bool) error {
	if tt.createErr != nil {
		return tt.createErr
	}
	cond := ""
	if ifNotExists {
		cond = "IF NOT EXISTS "
	}
	_, err := q.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s%s (id INTEGER PRIMARY KEY)", cond, tt.name))
	return err
}

func (tt *testTable) Drop(ctx context.Context, q types.Querier, ifExists bool) error {
	cond := ""
	if ifExists {
		cond = "IF EXISTS "
	}
	_, err := q.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s%s", cond, tt.name))
	return err
}

type testCatalog map[string]migrator.Object

//nolint:ireturn // Required by the interface.
func (c testCatalog) Object(name string) (migrator.Object, bool) {
	obj, ok := c[name]
	return obj, ok
}

var errCreate = errors.New("create failed")

// newTestCatalog returns a catalog of the test objects. Creating any of the
// objects named in failing returns errCreate.
func newTestCatalog(failing ...string) testCatalog {
	c := testCatalog{}
	for _, name := range []string{"a", "b", "c", "d"} {
		c[name] = &testTable{name: name}
	}
	for _, name := range failing {
		c[name] = &testTable{name: name, createErr: errCreate}
	}
	return c
}

func newTestManager(t *testing.T, failing ...string) *migrator.Manager {
	t.Helper()
	mgr, err := migrator.NewManager(newTestRegistry(t), newTestCatalog(failing...),
		migrator.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)
	return mgr
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	// A unique name per test, to avoid clashing of in-memory SQLite DBs.
	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(t.Context(),
		fmt.Sprintf("file:dbadmin-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}

// createTables creates the given test tables, without recording a version.
func createTables(t *testing.T, d *db.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		tbl := &testTable{name: name}
		require.NoError(t, tbl.Create(t.Context(), d, false))
	}
}

// snapshot returns the sorted names of the tracked objects in the database.
func snapshot(t *testing.T, d *db.DB) []string {
	t.Helper()
	snap, err := migrator.Snapshot(t.Context(), d, newTestRegistry(t))
	require.NoError(t, err)
	return snap.Sorted()
}

// ledgerVersions returns the recorded ordinals, oldest first.
func ledgerVersions(t *testing.T, d *db.DB) []migrator.Ordinal {
	t.Helper()
	records, err := migrator.History(t.Context(), d)
	require.NoError(t, err)

	out := make([]migrator.Ordinal, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = rec.Ordinal
	}
	return out
}
