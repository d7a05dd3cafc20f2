package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentstation/wikisync"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(app App) *cobra.Command {
	var (
		always      bool
		force       bool
		limit       int
		skipWAM     bool
		skipQueue   bool
		skipDetails bool
		skipAdmins  bool
	)

	c := &cobra.Command{
		Use:   "sync",
		Short: "Run one catalog reconciliation",
		Long: `Sync discovers candidate wikis, hydrates them through the farm API, and
reconciles the result into the catalog document.

On a terminal every proposed document change is shown as a diff and must
be confirmed; --always accepts everything without asking. Press Ctrl-C
once to stop the current enrichment pass, twice to abort the run.`,
		RunE: func(c *cobra.Command, _ []string) error {
			settings := app.Settings()
			settings.Skip.WAM = settings.Skip.WAM || skipWAM
			settings.Skip.Queue = settings.Skip.Queue || skipQueue
			settings.Skip.Details = settings.Skip.Details || skipDetails
			settings.Skip.Admins = settings.Skip.Admins || skipAdmins

			opts := []wikisync.Option{
				wikisync.WithForce(force),
				wikisync.WithLimit(limit),
			}
			if !always && isatty.IsTerminal(os.Stdin.Fd()) {
				opts = append(opts, wikisync.WithConfirmation(os.Stdin))
			}

			ws, err := app.Wikisync(opts...)
			if err != nil {
				return err
			}

			result, err := ws.Sync(c.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(app.Output(), "sync complete: %d added, %d updated, %d removed",
				result.Added, result.Updated, result.Removed)
			if !result.Written {
				fmt.Fprint(app.Output(), " (nothing written)")
			}
			fmt.Fprintln(app.Output())
			return nil
		},
	}

	c.Flags().BoolVar(&always, "always", false, "accept every proposed change without asking")
	c.Flags().BoolVar(&force, "force", false, "write the catalog even when unchanged")
	c.Flags().IntVar(&limit, "limit", 0, "cap how many new wikis this run may add (0 = no cap)")
	c.Flags().BoolVar(&skipWAM, "skip-wam", false, "skip ranked-index discovery")
	c.Flags().BoolVar(&skipQueue, "skip-queue", false, "skip the submission queue")
	c.Flags().BoolVar(&skipDetails, "skip-details", false, "skip the per-wiki details pass")
	c.Flags().BoolVar(&skipAdmins, "skip-admins", false, "skip the admin-activity pass")
	return c
}
