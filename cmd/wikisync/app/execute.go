package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/wikisync/cmd/wikisync/cmd"
)

// Execute runs the wikisync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "wikisync",
		Short:   "Fandom wiki catalog synchronization",
		Version: a.version,
		Long: `Wikisync maintains a catalog of wikis hosted on the Fandom wiki farm.

Each run discovers candidate wikis from the persisted catalog, the ranked
WAM index, and an operator-maintained submission queue, hydrates them
through the farm API, and reconciles the result back into the catalog.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.wikisync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	rootCmd.PersistentFlags().StringVar(&a.config.DataDir, "data-dir", a.config.DataDir, "document store directory")

	rootCmd.SetVersionTemplate("wikisync {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(c *cobra.Command, _ []string) error {
	verbose, _ := c.Flags().GetBool("verbose")
	quiet, _ := c.Flags().GetBool("quiet")
	noColor, _ := c.Flags().GetBool("no-color")
	logLevel, _ := c.Flags().GetString("log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, logLevel)

	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(cmd.NewSyncCommand(a))
	rootCmd.AddCommand(cmd.NewCatalogCommand(a))
	rootCmd.AddCommand(cmd.NewVersionCommand(a.version, a.commit, a.date, a.builtBy))
}
