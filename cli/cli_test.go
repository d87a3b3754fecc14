package cli

import (
	"bytes"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/dbadmin/app/config"
	"go.hackfix.me/dbadmin/db/schema"
)

func TestCLIParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		expCommand string
		check      func(t *testing.T, c *CLI)
		expErr     string
	}{
		{
			name:       "ok/create_version",
			args:       []string{"create", "--schema-version", "4.4.0"},
			expCommand: "create",
			check: func(t *testing.T, c *CLI) {
				assert.Equal(t, "4.4.0", c.Create.SchemaVersion)
				assert.Equal(t, slog.LevelInfo, c.Log.Level)
			},
		},
		{
			name:       "ok/downgrade_arg",
			args:       []string{"--log-level", "DEBUG", "downgrade", "4.3.0"},
			expCommand: "downgrade",
			check: func(t *testing.T, c *CLI) {
				assert.Equal(t, "4.3.0", c.Downgrade.SchemaVersion)
				assert.Equal(t, slog.LevelDebug, c.Log.Level)
			},
		},
		{
			name:       "ok/version_command",
			args:       []string{"-d", "sqlite:///tmp/workflow.db", "version"},
			expCommand: "version",
			check: func(t *testing.T, c *CLI) {
				assert.Equal(t, "sqlite:///tmp/workflow.db", c.Database)
			},
		},
		{
			name:       "ok/busy_timeout",
			args:       []string{"--busy-timeout", "2m", "status"},
			expCommand: "status",
			check: func(t *testing.T, c *CLI) {
				assert.Equal(t, 2*time.Minute, c.BusyTimeout)
			},
		},
		{
			name:   "err/unknown_command",
			args:   []string{"migrate"},
			expErr: "failed parsing CLI arguments",
		},
		{
			name:   "err/invalid_log_level",
			args:   []string{"--log-level", "LOUD", "version"},
			expErr: "failed parsing CLI arguments",
		},
		{
			name:   "err/invalid_busy_timeout",
			args:   []string{"--busy-timeout", "soon", "version"},
			expErr: `invalid duration "soon"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := New("dbadmin", "/config.json", "/data", "dbadmin test")
			require.NoError(t, err)
			c.kong.Stdout = &bytes.Buffer{}
			c.kong.Stderr = &bytes.Buffer{}

			err = c.Parse(tt.args)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expCommand, c.Command())
			tt.check(t, c)
		})
	}
}

func TestCLIApplyConfig(t *testing.T) {
	t.Parallel()

	newCLI := func(t *testing.T, args ...string) *CLI {
		t.Helper()
		c, err := New("dbadmin", "/config.json", "/data", "dbadmin test")
		require.NoError(t, err)
		require.NoError(t, c.Parse(args))
		return c
	}

	cfg := config.NewConfig(memoryfs.New(), "/config.json")
	cfg.Database.URI = sql.Null[string]{V: "postgres://localhost/workflow", Valid: true}
	cfg.Database.BusyTimeout = sql.Null[time.Duration]{V: time.Second, Valid: true}
	cfg.Log.Level = sql.Null[slog.Level]{V: slog.LevelError, Valid: true}

	t.Run("ok/from_config", func(t *testing.T) {
		t.Parallel()

		c := newCLI(t, "version")
		c.ApplyConfig(cfg)
		assert.Equal(t, "postgres://localhost/workflow", c.Database)
		assert.Equal(t, time.Second, c.BusyTimeout)
		assert.Equal(t, slog.LevelError, c.Log.Level)
	})

	t.Run("ok/cli_overrides", func(t *testing.T) {
		t.Parallel()

		c := newCLI(t, "--database", "sqlite://a.db", "--busy-timeout", "3s", "--log-level", "WARN", "version")
		c.ApplyConfig(cfg)
		assert.Equal(t, "sqlite://a.db", c.Database)
		assert.Equal(t, 3*time.Second, c.BusyTimeout)
		assert.Equal(t, slog.LevelWarn, c.Log.Level)
	})

	t.Run("ok/explicit_default_log_level", func(t *testing.T) {
		t.Parallel()

		c := newCLI(t, "--log-level", "INFO", "version")
		c.ApplyConfig(cfg)
		assert.Equal(t, slog.LevelInfo, c.Log.Level)
		assert.True(t, c.flagSet("log-level"))
	})

	t.Run("ok/default_database", func(t *testing.T) {
		t.Parallel()

		c := newCLI(t, "version")
		c.ApplyConfig(config.NewConfig(memoryfs.New(), "/config.json"))
		assert.Equal(t, "sqlite:///data/workflow.db", c.Database)
		assert.Equal(t, time.Duration(0), c.BusyTimeout)
		assert.Equal(t, slog.LevelInfo, c.Log.Level)
		assert.False(t, c.flagSet("log-level"))
	})
}

// The environment is process-wide, so this test can't run in parallel.
func TestCLIApplyConfigEnv(t *testing.T) {
	t.Setenv("DBADMIN_LOG_LEVEL", "WARN")

	c, err := New("dbadmin", "/config.json", "/data", "dbadmin test")
	require.NoError(t, err)
	require.NoError(t, c.Parse([]string{"version"}))

	cfg := config.NewConfig(memoryfs.New(), "/config.json")
	cfg.Log.Level = sql.Null[slog.Level]{V: slog.LevelError, Valid: true}
	c.ApplyConfig(cfg)

	assert.True(t, c.flagSet("log-level"))
	assert.Equal(t, slog.LevelWarn, c.Log.Level)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	reg := schema.Registry()
	assert.Equal(t, "1 (4.3.2)", describe(reg, 1))
	assert.Equal(t, "4 (4.6.2)", describe(reg, 4))
	assert.Equal(t, "9", describe(reg, 9))

	assert.Nil(t, optVersion(""))
	assert.Equal(t, "4.5.0", optVersion("4.5.0"))
}
