package cmd

import (
	"github.com/msalah0e/gridmap/internal/api"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func taxonomyCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "taxonomy",
		Short:   "List node types with their colors, icons and labels",
		Aliases: []string{"types"},
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			entries := api.Taxonomy(locale())
			if format == "json" || format == "yaml" {
				printEncoded(entries, kgraph.Format(format))
				return
			}

			ui.Banner("taxonomy")
			var rows [][]string
			for _, e := range entries {
				tier := "leaf"
				if !e.Leaf {
					tier = "tier"
				}
				rows = append(rows, []string{
					ui.Swatch(e.Type) + " " + e.Type.String(),
					e.Plural,
					ui.TypeColor(e.Type).Sprint(e.Label),
					string(e.Color),
					e.Icon,
					ui.Subtle.Sprint(tier),
				})
			}
			ui.Table([]string{"TYPE", "PLURAL", "LABEL", "COLOR", "ICON", ""}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}
