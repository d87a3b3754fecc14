package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"go.hackfix.me/dbadmin/app/config"
	actx "go.hackfix.me/dbadmin/app/context"
)

// DefaultDatabaseFile is the name of the SQLite database created in the data
// directory, if no database URI is specified.
const DefaultDatabaseFile = "workflow.db"

// CLI is the command line interface of dbadmin.
type CLI struct {
	Init      Init      `kong:"cmd,help='Write the global database and logging options to the configuration file.'"`
	Create    Create    `kong:"cmd,help='Create the database schema, or migrate it to the requested version.'"`
	Upgrade   Upgrade   `kong:"cmd,help='Upgrade the database schema.'"`
	Downgrade Downgrade `kong:"cmd,help='Downgrade the database schema.'"`
	Verify    Verify    `kong:"cmd,help='Check that the database schema matches a version exactly.'"`
	DBVersion DBVersion `kong:"cmd,name='version',help='Print the schema version of the database.'"`
	History   History   `kong:"cmd,help='List the recorded schema versions of the database.'"`
	Status    Status    `kong:"cmd,help='Show the status of every schema object.'"`
	Releases  Releases  `kong:"cmd,help='List the supported schema versions and their releases.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: kong.ConfigFlag isn't used, since the configuration is managed
	// independently from the CLI.
	ConfigFile  string           `kong:"default='${configFile}',help='Path to the dbadmin configuration file.'"`
	DataDir     string           `kong:"default='${dataDir}',help='Path to the directory where the default database is stored.'"`
	Database    string           `kong:"short='d',placeholder='URI',help='URI of the database, e.g. sqlite:///path/to/workflow.db or postgres://user@host/dbname.'"`
	BusyTimeout time.Duration    `kong:"type='xduration',help='Amount of time to wait for a locked SQLite database, e.g. 5s or 1m30s.'"`
	Version     kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(name, configFilePath, dataDir, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name(name),
		kong.UsageOnError(),
		kong.DefaultEnvars("DBADMIN"),
		kong.NamedMapper("xduration", DurationMapper{}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"dataDir":    dataDir,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx, c)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set. If no database URI is set at all, an SQLite database in the data
// directory is used.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Database == "" && cfg.Database.URI.Valid {
		c.Database = cfg.Database.URI.V
	}
	if c.Database == "" {
		c.Database = "sqlite://" + filepath.Join(c.DataDir, DefaultDatabaseFile)
	}
	if c.BusyTimeout == 0 && cfg.Database.BusyTimeout.Valid {
		c.BusyTimeout = cfg.Database.BusyTimeout.V
	}
	if !c.flagSet("log-level") && cfg.Log.Level.Valid {
		c.Log.Level = cfg.Log.Level.V
	}
}

// flagSet returns true if the flag with the given name was given on the
// command line, or through its environment variable. Flags that only hold
// their default value aren't considered set.
func (c *CLI) flagSet(name string) bool {
	if c.kctx == nil {
		return false
	}
	for _, p := range c.kctx.Path {
		if p.Flag != nil && p.Flag.Name == name {
			return true
		}
	}
	for _, f := range c.kctx.Flags() {
		if f.Name != name {
			continue
		}
		for _, env := range f.Envs {
			if _, ok := os.LookupEnv(env); ok {
				return true
			}
		}
	}

	return false
}
