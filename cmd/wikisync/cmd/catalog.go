package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(app App) *cobra.Command {
	c := &cobra.Command{
		Use:   "catalog",
		Short: "List the persisted catalog",
		RunE: func(c *cobra.Command, _ []string) error {
			ws, err := app.Wikisync()
			if err != nil {
				return err
			}
			catalog, err := ws.Catalog(c.Context())
			if err != nil {
				return err
			}

			ids := catalog.IDs()
			if len(ids) == 0 {
				fmt.Fprintln(app.Output(), "catalog is empty")
				return nil
			}

			table := tablewriter.NewTable(app.Output())
			table.Header("ID", "Code", "Name", "Domain", "Lang", "Hub")
			for _, id := range ids {
				doc, _ := catalog.Document(id)
				if err := table.Append(
					strconv.Itoa(id),
					str(doc["code"]),
					str(doc["name"]),
					str(doc["domain"]),
					str(doc["language"]),
					str(doc["hub"]),
				); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			fmt.Fprintf(app.Output(), "%d wikis\n", len(ids))
			return nil
		},
	}
	return c
}

func str(value any) string {
	s, _ := value.(string)
	return s
}
