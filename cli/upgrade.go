package cli

import (
	"fmt"

	"go.hackfix.me/dbadmin/admin"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
)

// Upgrade is the upgrade command.
type Upgrade struct {
	SchemaVersion string `kong:"arg,optional,name='release',help='Release to upgrade to, e.g. 4.6.0. Defaults to the current version.'"`
}

// Run the upgrade command.
func (c *Upgrade) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err = conn.Manager.Upgrade(appCtx.Ctx, conn.DB, optVersion(c.SchemaVersion)); err != nil {
		return aerrors.Schema(err)
	}

	o, err := conn.CurrentVersion(appCtx.Ctx, conn.DB)
	if err != nil {
		return aerrors.Schema(err)
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Database schema is at version %s\n", describe(conn.Registry(), o))

	return err //nolint:wrapcheck // This is fine.
}

// Downgrade is the downgrade command.
type Downgrade struct {
	SchemaVersion string `kong:"arg,optional,name='release',help='Release to downgrade to, e.g. 4.4.0. Defaults to the minimum supported version.'"`
}

// Run the downgrade command.
func (c *Downgrade) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	if err = conn.Manager.Downgrade(appCtx.Ctx, conn.DB, optVersion(c.SchemaVersion)); err != nil {
		return aerrors.Schema(err)
	}

	o, err := conn.CurrentVersion(appCtx.Ctx, conn.DB)
	if err != nil {
		return aerrors.Schema(err)
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Database schema is at version %s\n", describe(conn.Registry(), o))

	return err //nolint:wrapcheck // This is fine.
}
