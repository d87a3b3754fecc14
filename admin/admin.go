// Package admin opens workflow metadata databases, and brings their schema to
// the version the caller expects.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.hackfix.me/dbadmin/db"
	"go.hackfix.me/dbadmin/db/migrator"
	"go.hackfix.me/dbadmin/db/schema"
)

// Conn is an open database, together with the manager of its schema.
type Conn struct {
	*db.DB
	*migrator.Manager
}

type options struct {
	create      bool
	schemaCheck bool
	version     any
	logger      *slog.Logger
	timeNow     func() time.Time
	dbOpts      []db.Option
}

// Option is a function that allows configuring Connect.
type Option func(*options)

// WithCreate sets whether the schema should be created or migrated to the
// target version when connecting.
func WithCreate(create bool) Option {
	return func(o *options) {
		o.create = create
	}
}

// WithSchemaCheck sets whether the schema should be verified when connecting.
// It's ignored if WithCreate(true) is also used. It's enabled by default.
func WithSchemaCheck(check bool) Option {
	return func(o *options) {
		o.schemaCheck = check
	}
}

// WithVersion sets the release string of the version the schema is created
// or migrated to. The current version is used by default.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithLogger sets the logger used by the schema manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTimeNow sets the function used to timestamp version records.
func WithTimeNow(timeNowFn func() time.Time) Option {
	return func(o *options) {
		o.timeNow = timeNowFn
	}
}

// WithDBOptions sets options passed to db.Open.
func WithDBOptions(opts ...db.Option) Option {
	return func(o *options) {
		o.dbOpts = append(o.dbOpts, opts...)
	}
}

// Connect opens the database at the given URI. With WithCreate(true), the
// schema is created, or migrated to the requested version from whatever
// version is recorded or can be inferred. Otherwise, unless disabled with
// WithSchemaCheck(false), the schema is verified against the current version.
func Connect(ctx context.Context, uri string, opts ...Option) (*Conn, error) {
	o := &options{schemaCheck: true, logger: slog.Default(), timeNow: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	mgr, err := migrator.NewManager(schema.Registry(), schema.Tables(), migrator.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	var target migrator.Ordinal
	if o.create {
		// Fail early on bad versions, before touching the database.
		if target, err = mgr.Registry().Parse(o.version); err != nil {
			return nil, err
		}
	}

	d, err := db.Open(ctx, uri, o.timeNow, o.dbOpts...)
	if err != nil {
		return nil, err
	}
	conn := &Conn{DB: d, Manager: mgr}

	switch {
	case o.create:
		err = mgr.Ensure(ctx, d, target)
	case o.schemaCheck:
		err = mgr.Verify(ctx, d, nil)
	}
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}

	return conn, nil
}

// Close closes the database.
func (c *Conn) Close() error {
	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("failed closing database: %w", err)
	}
	return nil
}
