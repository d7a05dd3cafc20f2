package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date, builtBy string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintf(c.OutOrStdout(), "wikisync %s\n", version)
			fmt.Fprintf(c.OutOrStdout(), "  commit:   %s\n", commit)
			fmt.Fprintf(c.OutOrStdout(), "  built:    %s\n", date)
			fmt.Fprintf(c.OutOrStdout(), "  built by: %s\n", builtBy)
		},
	}
}
