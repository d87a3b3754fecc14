package admin_test

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/dbadmin/admin"
	"go.hackfix.me/dbadmin/db/migrator"
	"go.hackfix.me/dbadmin/db/schema"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func newTestURI(t *testing.T) string {
	t.Helper()
	return "sqlite://" + filepath.Join(t.TempDir(), "workflow.db")
}

func connect(t *testing.T, uri string, opts ...admin.Option) (*admin.Conn, error) {
	t.Helper()
	opts = append([]admin.Option{
		admin.WithLogger(slog.New(slog.DiscardHandler)),
		admin.WithTimeNow(timeNowFn),
	}, opts...)

	conn, err := admin.Connect(t.Context(), uri, opts...)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}

	return conn, err
}

func mustConnect(t *testing.T, uri string, opts ...admin.Option) *admin.Conn {
	t.Helper()
	conn, err := connect(t, uri, opts...)
	require.NoError(t, err)
	return conn
}

func currentVersion(t *testing.T, conn *admin.Conn) migrator.Ordinal {
	t.Helper()
	o, err := conn.CurrentVersion(t.Context(), conn.DB)
	require.NoError(t, err)
	return o
}

func exec(t *testing.T, conn *admin.Conn, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		_, err := conn.ExecContext(t.Context(), stmt)
		require.NoError(t, err, stmt)
	}
}

func TestConnectCreate(t *testing.T) {
	t.Parallel()

	uri := newTestURI(t)
	ctx := t.Context()
	current := schema.Registry().Current()

	conn := mustConnect(t, uri, admin.WithCreate(true))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))
	assert.Equal(t, current, currentVersion(t, conn))

	// Without a version record, the schema can't be verified, but the existing
	// schema is adopted when connecting in create mode.
	exec(t, conn, "DROP TABLE dbversion")
	var undErr *migrator.VersionUndeterminableError
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &undErr)
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri, admin.WithCreate(true))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))
	assert.Equal(t, current, currentVersion(t, conn))

	// A downgraded database with a dropped table is upgraded and repaired.
	require.NoError(t, conn.Downgrade(ctx, conn.DB, "4.4.2"))
	assert.Equal(t, migrator.Ordinal(2), currentVersion(t, conn))
	exec(t, conn, "DROP TABLE rc_lfn")
	var mismatchErr *migrator.SchemaMismatchError
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri, admin.WithCreate(true))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))
	assert.Equal(t, current, currentVersion(t, conn))

	// With the version record also gone, the version can't be determined.
	require.NoError(t, conn.Downgrade(ctx, conn.DB, "4.3.0"))
	assert.Equal(t, migrator.Ordinal(1), currentVersion(t, conn))
	exec(t, conn, "DROP TABLE rc_lfn", "DROP TABLE workflow", "DROP TABLE master_workflow")
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, "4.3.0"), &mismatchErr)
	assert.ElementsMatch(t, []string{"master_workflow", "rc_lfn", "workflow"}, mismatchErr.Missing)
	exec(t, conn, "DROP TABLE dbversion")
	_, err := conn.CurrentVersion(ctx, conn.DB)
	require.ErrorAs(t, err, &undErr)
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri, admin.WithCreate(true))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))
	assert.Equal(t, current, currentVersion(t, conn))
}

func TestConnectVersionOperations(t *testing.T) {
	t.Parallel()

	uri := newTestURI(t)
	ctx := t.Context()

	conn := mustConnect(t, uri, admin.WithCreate(true))

	require.NoError(t, conn.Downgrade(ctx, conn.DB, "4.4.2"))
	assert.Equal(t, migrator.Ordinal(2), currentVersion(t, conn))
	var mismatchErr *migrator.SchemaMismatchError
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	assert.Equal(t, migrator.Ordinal(2), mismatchErr.Recorded)
	require.NoError(t, conn.Verify(ctx, conn.DB, "4.4.2"))

	require.NoError(t, conn.Downgrade(ctx, conn.DB, nil))
	assert.Equal(t, migrator.Ordinal(1), currentVersion(t, conn))
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	require.NoError(t, conn.Close())

	// Connecting with schema checks enabled fails on outdated databases.
	_, err := connect(t, uri)
	require.ErrorAs(t, err, &mismatchErr)

	conn = mustConnect(t, uri, admin.WithCreate(true), admin.WithVersion("4.4.0"))
	assert.Equal(t, migrator.Ordinal(2), currentVersion(t, conn))
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri, admin.WithCreate(true))
	assert.Equal(t, schema.Registry().Current(), currentVersion(t, conn))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri)
	assert.Equal(t, schema.Registry().Current(), currentVersion(t, conn))
}

func TestConnectMinimumDowngrade(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	conn := mustConnect(t, newTestURI(t), admin.WithCreate(true))

	require.NoError(t, conn.Downgrade(ctx, conn.DB, "4.3.0"))
	assert.Equal(t, migrator.Ordinal(1), currentVersion(t, conn))

	require.NoError(t, conn.Downgrade(ctx, conn.DB, nil))
	assert.Equal(t, migrator.Ordinal(1), currentVersion(t, conn))
	require.NoError(t, conn.Verify(ctx, conn.DB, "4.3.0"))
}

func TestConnectAllDowngradeUpgrade(t *testing.T) {
	t.Parallel()

	uri := newTestURI(t)
	ctx := t.Context()

	conn := mustConnect(t, uri, admin.WithCreate(true))
	require.NoError(t, conn.Downgrade(ctx, conn.DB, "4.3.0"))
	assert.Equal(t, migrator.Ordinal(1), currentVersion(t, conn))
	var mismatchErr *migrator.SchemaMismatchError
	require.ErrorAs(t, conn.Verify(ctx, conn.DB, nil), &mismatchErr)
	require.NoError(t, conn.Verify(ctx, conn.DB, "4.3.0"))
	require.NoError(t, conn.Close())

	conn = mustConnect(t, uri, admin.WithCreate(true))
	assert.Equal(t, schema.Registry().Current(), currentVersion(t, conn))
	require.NoError(t, conn.Verify(ctx, conn.DB, nil))

	records, err := migrator.History(ctx, conn.DB)
	require.NoError(t, err)
	versions := make([]migrator.Ordinal, len(records))
	for i, rec := range records {
		versions[i] = rec.Ordinal
	}
	assert.Equal(t, []migrator.Ordinal{4, 3, 2, 1, 2, 3, 4}, versions)
}

func TestConnectPartialDatabase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tables []string
	}{
		{
			name:   "replica_catalog",
			tables: []string{"rc_lfn", "rc_attr"},
		},
		{
			name:   "dashboard_and_ensemble",
			tables: []string{"master_workflow", "master_workflowstate", "ensemble", "ensemble_workflow"},
		},
		{
			name: "stampede",
			tables: []string{
				"workflow", "workflowstate", "host", "job", "job_edge", "job_instance",
				"jobstate", "task", "task_edge", "invocation", "file",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uri := newTestURI(t)
			ctx := t.Context()
			catalog := schema.Tables()

			conn := mustConnect(t, uri, admin.WithSchemaCheck(false))
			for _, name := range tt.tables {
				require.NoError(t, catalog[name].Create(ctx, conn.DB, true))
			}
			require.Error(t, conn.Verify(ctx, conn.DB, nil))

			// Without inference, the existing tables are ambiguous.
			var ambErr *migrator.AmbiguousSchemaStateError
			require.ErrorAs(t, conn.Migrate(ctx, conn.DB, schema.Registry().Current()), &ambErr)
			require.NoError(t, conn.Close())

			// Connecting with schema checks enabled fails.
			_, err := connect(t, uri)
			require.Error(t, err)

			conn = mustConnect(t, uri, admin.WithCreate(true))
			assert.Equal(t, schema.Registry().Current(), currentVersion(t, conn))
			require.NoError(t, conn.Verify(ctx, conn.DB, nil))
		})
	}
}

func TestConnectErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		uri    string
		opts   []admin.Option
		expErr string
	}{
		{
			name:   "err/empty_database",
			opts:   []admin.Option{},
			expErr: "unable to determine the database schema version",
		},
		{
			name:   "err/invalid_version",
			opts:   []admin.Option{admin.WithCreate(true), admin.WithVersion("4.3")},
			expErr: "invalid version '4.3'",
		},
		{
			name:   "err/unknown_release",
			opts:   []admin.Option{admin.WithCreate(true), admin.WithVersion("5.0.0")},
			expErr: "invalid version '5.0.0': unknown release",
		},
		{
			name:   "err/unsupported_uri",
			uri:    "mysql://localhost/workflow",
			expErr: "unsupported database dialect 'mysql'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uri := tt.uri
			if uri == "" {
				uri = newTestURI(t)
			}

			conn, err := connect(t, uri, tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expErr)
			assert.Nil(t, conn)
		})
	}

	t.Run("ok/no_schema_check", func(t *testing.T) {
		t.Parallel()

		conn := mustConnect(t, newTestURI(t), admin.WithSchemaCheck(false))
		_, err := conn.CurrentVersion(t.Context(), conn.DB)
		var undErr *migrator.VersionUndeterminableError
		require.ErrorAs(t, err, &undErr)
	})
}
