package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/wikisync/pkg/logging"
)

// NewLogger creates a configured logger based on the application
// configuration. Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	var logger zerolog.Logger
	switch {
	case config.LogFormat == "json":
		logger = logging.New(os.Stderr)
	case config.LogFormat == "console":
		logger = logging.NewConsole()
	case isatty.IsTerminal(os.Stderr.Fd()) && !config.NoColor:
		logger = logging.NewConsole()
	default:
		logger = logging.New(os.Stderr)
	}

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", level, "info")
		parsed = zerolog.InfoLevel
	}
	return logger.Level(parsed)
}

// determineLogLevel determines the log level using the precedence rules.
func determineLogLevel(config *Config) string {
	if config.LogLevel != "" {
		return config.LogLevel
	}
	if config.Verbose && config.Quiet {
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return "warn"
	}
	if config.Verbose {
		return "debug"
	}
	if config.Quiet {
		return "warn"
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return env
	}
	return "info"
}
