package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/dbadmin/app/context"
)

// Init is the init command.
type Init struct {
	Force bool `kong:"help='Overwrite an existing configuration file.'"`
}

// Run the init command. Settings given with global flags or their environment
// variables are written to the configuration file, so that later commands
// don't need them. Environment variable references in the database URI are
// written unexpanded.
func (c *Init) Run(appCtx *actx.Context, root *CLI) error {
	cfg := appCtx.Config

	exists, err := vfs.Exists(appCtx.FS, cfg.Path())
	if err != nil {
		return fmt.Errorf("failed checking configuration file: %w", err)
	}
	if exists && !c.Force {
		return fmt.Errorf("configuration file %s already exists; use --force to overwrite it", cfg.Path())
	}

	if root.flagSet("database") {
		cfg.Database.URI = sql.Null[string]{V: root.Database, Valid: true}
	}
	if root.flagSet("busy-timeout") {
		cfg.Database.BusyTimeout = sql.Null[time.Duration]{V: root.BusyTimeout, Valid: true}
	}
	if root.flagSet("log-level") {
		cfg.Log.Level = sql.Null[slog.Level]{V: root.Log.Level, Valid: true}
	}

	if err = cfg.Save(); err != nil {
		return err //nolint:wrapcheck // Already wrapped.
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Wrote configuration file %s\n", cfg.Path())

	return err //nolint:wrapcheck // This is fine.
}
