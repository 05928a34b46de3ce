package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/memolab/internal/demo"
)

func pagesCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the tutorial pages",
		Long: `List the tutorial pages by section, with the actions each accepts.

Examples:
  memolab pages
  memolab pages --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := demo.Catalog()
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}

			for _, section := range catalog {
				fmt.Fprintf(a.stdout, "%s\n", section.Title)
				for _, page := range section.Pages {
					fmt.Fprintf(a.stdout, "  %-26s %s\n", page.Path, page.Description)
					fmt.Fprintf(a.stdout, "  %-26s actions: %s\n", "", strings.Join(page.Actions, ", "))
				}
				fmt.Fprintln(a.stdout)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")

	return cmd
}
