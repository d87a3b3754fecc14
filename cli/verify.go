package cli

import (
	"fmt"

	"go.hackfix.me/dbadmin/admin"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
)

// Verify is the verify command.
type Verify struct {
	SchemaVersion string `kong:"arg,optional,name='release',help='Release to verify the schema against. Defaults to the current version, which must also be the recorded version.'"`
}

// Run the verify command.
func (c *Verify) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	reg := conn.Registry()
	o := reg.Current()
	if v := optVersion(c.SchemaVersion); v != nil {
		if o, err = reg.Parse(v); err != nil {
			return err //nolint:wrapcheck // This is fine.
		}
	}

	if err = conn.Manager.Verify(appCtx.Ctx, conn.DB, optVersion(c.SchemaVersion)); err != nil {
		return aerrors.Schema(err)
	}

	_, err = fmt.Fprintf(appCtx.Stdout, "Database schema matches version %s\n", describe(reg, o))

	return err //nolint:wrapcheck // This is fine.
}

// DBVersion is the version command.
type DBVersion struct{}

// Run the version command.
func (c *DBVersion) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx, admin.WithSchemaCheck(false))
	if err != nil {
		return err
	}
	defer conn.Close()

	o, err := conn.CurrentVersion(appCtx.Ctx, conn.DB)
	if err != nil {
		return aerrors.Schema(err)
	}

	_, err = fmt.Fprintln(appCtx.Stdout, describe(conn.Registry(), o))

	return err //nolint:wrapcheck // This is fine.
}
