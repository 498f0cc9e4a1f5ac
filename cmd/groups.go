package cmd

import (
	"fmt"
	"os"

	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func groupsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the groups a view can be scoped to",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			groups, err := openSource().Groups(cmd.Context())
			if err != nil {
				ui.Bad.Printf("  Failed to list groups: %v\n", err)
				os.Exit(1)
			}
			if format == "json" || format == "yaml" {
				printEncoded(groups, kgraph.Format(format))
				return
			}

			ui.Banner("groups")
			if len(groups) == 0 {
				fmt.Println("  No groups found.")
				return
			}
			var rows [][]string
			for _, g := range groups {
				rows = append(rows, []string{ui.Swatch(taxonomy.Group) + " " + g.ID, g.Code, g.Title()})
			}
			ui.Table([]string{"ID", "CODE", "TITLE"}, rows)
			fmt.Printf("\n  %d groups\n", len(groups))
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}
