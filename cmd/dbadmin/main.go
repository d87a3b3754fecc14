package main

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"go.hackfix.me/dbadmin/app"
	actx "go.hackfix.me/dbadmin/app/context"
	aerrors "go.hackfix.me/dbadmin/app/errors"
)

func main() {
	configFile, dataDir := defaultPaths()

	a, err := app.New("dbadmin", configFile, dataDir,
		app.WithEnv(osEnv{}),
		app.WithFDs(
			os.Stdin,
			colorable.NewColorable(os.Stdout),
			colorable.NewColorable(os.Stderr),
		),
		app.WithFS(osfs.New()),
		app.WithLogger(isatty.IsTerminal(os.Stderr.Fd())),
	)
	if err != nil {
		aerrors.Log(err)
		os.Exit(1)
	}
	if err = a.Run(os.Args[1:]); err != nil {
		aerrors.Log(err)
		os.Exit(1)
	}
}

// defaultPaths returns the default configuration file path, and the default
// data directory, following the XDG Base Directory Specification.
func defaultPaths() (configFile, dataDir string) {
	configFile = filepath.Join(xdg.ConfigHome, "dbadmin", "config.json")

	// DataFile creates the parent directory, so that SQLite can create the
	// default database.
	dbFile, err := xdg.DataFile(filepath.Join("dbadmin", "workflow.db"))
	if err != nil {
		dataDir = filepath.Join(xdg.DataHome, "dbadmin")
	} else {
		dataDir = filepath.Dir(dbFile)
	}

	return configFile, dataDir
}

type osEnv struct{}

var _ actx.Environment = &osEnv{}

func (osEnv) Get(key string) string {
	return os.Getenv(key)
}

