// Package app provides the application context and dependency wiring for
// the wikisync CLI: configuration, logging, and construction of the
// library instance the commands run against.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync"
	"github.com/agentstation/wikisync/pkg/catalogs"
)

// App represents the wikisync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string) (*App, error) {
	a := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger

	return a, nil
}

// Version returns the version string.
func (a *App) Version() string {
	return a.version
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Settings returns the run settings commands may adjust before building
// the instance.
func (a *App) Settings() *catalogs.Settings {
	return a.config.Settings
}

// Output returns the writer for user-facing command output.
func (a *App) Output() io.Writer {
	return os.Stdout
}

// Wikisync builds the library instance from the loaded configuration plus
// any command-specific options.
func (a *App) Wikisync(opts ...wikisync.Option) (wikisync.Wikisync, error) {
	base := []wikisync.Option{
		wikisync.WithSettings(a.config.Settings),
		wikisync.WithStoreDir(a.config.DataDir),
		wikisync.WithLogger(a.logger),
		wikisync.WithOutput(a.Output()),
		wikisync.WithSignalHandling(true),
	}
	if a.config.Server != "" {
		base = append(base, wikisync.WithServer(a.config.Server))
	}
	return wikisync.New(append(base, opts...)...)
}
