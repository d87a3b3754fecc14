package cli

import (
	"fmt"
	"strconv"

	"go.hackfix.me/dbadmin/admin"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
	"go.hackfix.me/dbadmin/db"
	"go.hackfix.me/dbadmin/db/migrator"
)

// connect opens the database of the application context.
func connect(appCtx *actx.Context, opts ...admin.Option) (*admin.Conn, error) {
	opts = append([]admin.Option{
		admin.WithLogger(appCtx.Logger),
		admin.WithTimeNow(appCtx.TimeNow),
	}, opts...)
	if appCtx.BusyTimeout > 0 {
		opts = append(opts, admin.WithDBOptions(db.WithBusyTimeout(appCtx.BusyTimeout)))
	}

	conn, err := admin.Connect(appCtx.Ctx, appCtx.DatabaseURI, opts...)
	if err != nil {
		return nil, aerrors.Schema(err)
	}

	return conn, nil
}

// optVersion returns the version argument of a command, or nil if it's empty.
func optVersion(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// describe returns a human readable form of a schema version.
func describe(reg *migrator.Registry, o migrator.Ordinal) string {
	release, err := reg.Release(o)
	if err != nil {
		return strconv.Itoa(int(o))
	}
	return fmt.Sprintf("%d (%s)", o, release)
}
