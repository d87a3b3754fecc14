package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/dbadmin/xtime"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Database Database
	Log      Log

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Database defines the options of the managed database.
type Database struct {
	// URI is the location of the database, e.g. "sqlite:///path/to/workflow.db"
	// or "postgres://user@host/dbname".
	URI sql.Null[string] `json:"uri"`
	// BusyTimeout is the amount of time SQLite waits for a locked database
	// before failing. It serializes from/to xtime.Duration string values.
	BusyTimeout sql.Null[time.Duration] `json:"busy_timeout"`
}

// Log defines logging options.
type Log struct {
	// Level is the minimum level of logged messages. It's overridden by the
	// --log-level CLI flag.
	Level sql.Null[slog.Level] `json:"level"`
}

type cfgWrapper struct {
	Database dbCfgWrapper  `json:"database"`
	Log      logCfgWrapper `json:"log"`
}
type dbCfgWrapper struct {
	URI         string `json:"uri,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}
type logCfgWrapper struct {
	Level string `json:"level,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Database.URI.Valid {
		w.Database.URI = c.Database.URI.V
	}
	if c.Database.BusyTimeout.Valid {
		w.Database.BusyTimeout = xtime.FormatDuration(c.Database.BusyTimeout.V, time.Millisecond)
	}
	if c.Log.Level.Valid {
		w.Log.Level = c.Log.Level.V.String()
	}

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Database.URI != "" {
		c.Database.URI = sql.Null[string]{V: w.Database.URI, Valid: true}
	}
	if w.Database.BusyTimeout != "" {
		dur, err := xtime.ParseDuration(w.Database.BusyTimeout)
		if err != nil {
			return fmt.Errorf("failed parsing database busy timeout: %w", err)
		}
		if dur < 0 {
			return fmt.Errorf("invalid database busy timeout: %s", w.Database.BusyTimeout)
		}
		c.Database.BusyTimeout = sql.Null[time.Duration]{V: dur, Valid: true}
	}
	if w.Log.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(w.Log.Level)); err != nil {
			return fmt.Errorf("failed parsing log level: %w", err)
		}
		c.Log.Level = sql.Null[slog.Level]{V: lvl, Valid: true}
	}

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	if !c.Database.BusyTimeout.Valid {
		c.Database.BusyTimeout = sql.Null[time.Duration]{V: 5 * time.Second, Valid: true}
	}
}
