// Package cmd implements the wikisync CLI subcommands.
package cmd

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync"
	"github.com/agentstation/wikisync/pkg/catalogs"
)

// App is the application context the commands run against.
type App interface {
	// Logger returns the application logger.
	Logger() *zerolog.Logger

	// Settings returns the run settings, adjustable before the instance is
	// built.
	Settings() *catalogs.Settings

	// Output returns the writer for user-facing output.
	Output() io.Writer

	// Wikisync builds the library instance from the loaded configuration.
	Wikisync(opts ...wikisync.Option) (wikisync.Wikisync, error)
}
