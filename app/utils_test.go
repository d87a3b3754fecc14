package app

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/dbadmin/app/config"
	actx "go.hackfix.me/dbadmin/app/context"
	"go.hackfix.me/dbadmin/db"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

type testApp struct {
	*App
	stdin          io.Writer
	stdout, stderr *safeBuffer
	env            *mockEnv
	dataDir        string
}

// newTestApp returns an application that manages an SQLite database in a
// temporary directory. If cfg is nil, the configuration is loaded from the
// in-memory filesystem, and points to the database in the temporary directory.
func newTestApp(ctx context.Context, t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	var (
		stdinR, stdinW = io.Pipe()
		stdout, stderr = newSafeBuffer(), newSafeBuffer()
		dataDir        = t.TempDir()
		env            = &mockEnv{env: map[string]string{"DBADMIN_TEST_DIR": dataDir}}
		fs             = memoryfs.New()
	)

	if cfg == nil {
		cfg = config.NewConfig(fs, "/config.json")
		cfg.Database.URI = sql.Null[string]{
			V: "sqlite://${DBADMIN_TEST_DIR}/workflow.db", Valid: true,
		}
		require.NoError(t, cfg.Save())
		cfg = nil
	}

	opts := []Option{
		WithTimeNow(timeNowFn),
		WithEnv(env),
		WithContext(ctx),
		WithFDs(stdinR, stdout, stderr),
		WithFS(fs),
		WithLogger(false),
	}
	if cfg != nil {
		opts = append(opts, WithConfig(cfg))
	}

	app, err := New("dbadmin", "/config.json", filepath.Join(dataDir, "data"), opts...)
	require.NoError(t, err)

	return &testApp{
		App: app, stdout: stdout, stderr: stderr,
		stdin: stdinW, env: env, dataDir: dataDir,
	}
}

// Run resets the standard output buffers, and runs the application with the
// given arguments.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()

	return ta.App.Run(args)
}

// connectTestDB opens the database of the last command that was run.
func connectTestDB(t *testing.T, tapp *testApp) (*db.DB, error) {
	t.Helper()
	return db.Open(t.Context(), tapp.ctx.DatabaseURI, timeNowFn)
}

type mockEnv struct {
	mx  sync.RWMutex
	env map[string]string
}

var _ actx.Environment = (*mockEnv)(nil)

func (me *mockEnv) Get(key string) string {
	me.mx.RLock()
	defer me.mx.RUnlock()
	return me.env[key]
}

// safeBuffer is a thread-safe buffer.
type safeBuffer struct {
	mx  sync.RWMutex
	buf *bytes.Buffer
}

func newSafeBuffer() *safeBuffer {
	return &safeBuffer{buf: &bytes.Buffer{}}
}

func (b *safeBuffer) Write(p []byte) (n int, err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Reset() {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.buf.Reset()
}

func (b *safeBuffer) String() string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.buf.String()
}
