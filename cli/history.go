package cli

import (
	"fmt"

	"go.hackfix.me/dbadmin/admin"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
	"go.hackfix.me/dbadmin/db/migrator"
	"go.hackfix.me/dbadmin/db/schema"
)

// History is the history command.
type History struct{}

// Run the history command.
func (c *History) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	records, err := migrator.History(appCtx.Ctx, conn.DB)
	if err != nil {
		return aerrors.Schema(err)
	}

	if len(records) == 0 {
		appCtx.Logger.Warn("database has no version records")
		return nil
	}

	if err = historyTable(records).render(appCtx.Stdout); err != nil {
		return fmt.Errorf("failed rendering version history: %w", err)
	}

	return nil
}

// Status is the status command.
type Status struct {
	SchemaVersion string `kong:"arg,optional,name='release',help='Release to compare the schema against. Defaults to the recorded version.'"`
}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	o, status, err := conn.Status(appCtx.Ctx, conn.DB, optVersion(c.SchemaVersion))
	if err != nil {
		return aerrors.Schema(err)
	}

	table, drift := statusTable(status)
	if err = table.render(appCtx.Stdout); err != nil {
		return fmt.Errorf("failed rendering schema status: %w", err)
	}

	appCtx.Logger.Info("compared schema objects",
		"version", describe(conn.Registry(), o), "objects", len(status), "drift", drift)

	return nil
}

// Releases is the releases command.
type Releases struct{}

// Run the releases command. It doesn't access the database.
func (c *Releases) Run(appCtx *actx.Context) error {
	reg := schema.Registry()
	if err := releasesTable(reg.Versions(), reg.Current()).render(appCtx.Stdout); err != nil {
		return fmt.Errorf("failed rendering schema versions: %w", err)
	}

	return nil
}
