package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	cfg "go.hackfix.me/dbadmin/app/config"
	actx "go.hackfix.me/dbadmin/app/context"
)

// Option is a function that allows configuring the application.
type Option func(*App)

// WithConfig sets a preloaded configuration, in which case the configuration
// file isn't read.
func WithConfig(c *cfg.Config) Option {
	return func(app *App) {
		app.ctx.Config = c
	}
}

// WithContext sets the context all database operations run under.
func WithContext(ctx context.Context) Option {
	return func(app *App) {
		app.ctx.Ctx = ctx
	}
}

// WithEnv sets the environment used to expand variables in the database URI.
func WithEnv(env actx.Environment) Option {
	return func(app *App) {
		app.ctx.Env = env
	}
}

// WithFDs sets the standard streams. Tables and command results are written
// to stdout, and logs to stderr.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdin, app.ctx.Stdout, app.ctx.Stderr = stdin, stdout, stderr
	}
}

// WithFS sets the filesystem the configuration file is read from.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) {
		app.ctx.FS = fs
	}
}

// WithLogger sets up logging to stderr, which must have been set with WithFDs
// beforehand. Output is colored if stderr is a terminal. The level can be
// changed later from the CLI or the configuration file.
func WithLogger(isStderrTTY bool) Option {
	return func(app *App) {
		app.logLevel = &slog.LevelVar{}
		app.ctx.Logger = slog.New(tint.NewHandler(app.ctx.Stderr, &tint.Options{
			Level:       app.logLevel,
			NoColor:     !isStderrTTY,
			TimeFormat:  "2006-01-02 15:04:05.000",
			ReplaceAttr: joinObjectNames,
		}))
		slog.SetDefault(app.ctx.Logger)
	}
}

// WithTimeNow sets the clock used to timestamp version records.
func WithTimeNow(timeNowFn func() time.Time) Option {
	return func(app *App) {
		app.ctx.TimeNow = timeNowFn
	}
}

// joinObjectNames renders lists of schema object names as a single
// comma-separated value, e.g. missing=host,job instead of missing="[host job]".
func joinObjectNames(_ []string, a slog.Attr) slog.Attr {
	if names, ok := a.Value.Any().([]string); ok {
		return slog.String(a.Key, strings.Join(names, ","))
	}
	return a
}
