package cli

import (
	"fmt"

	"go.hackfix.me/dbadmin/admin"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
)

// Create is the create command.
type Create struct {
	SchemaVersion string `kong:"name='schema-version',short='s',placeholder='RELEASE',help='Release of the schema version to create, e.g. 4.5.0. Defaults to the current version.'"`
}

// Run the create command.
func (c *Create) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithCreate(true), admin.WithVersion(c.SchemaVersion))
	if err != nil {
		return err
	}
	defer conn.Close()

	o, err := conn.CurrentVersion(appCtx.Ctx, conn.DB)
	if err != nil {
		return aerrors.Schema(err)
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Database schema is at version %s\n", describe(conn.Registry(), o))

	return err //nolint:wrapcheck // This is fine.
}
