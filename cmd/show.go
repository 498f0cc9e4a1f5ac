package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/msalah0e/gridmap/internal/controller"
	"github.com/msalah0e/gridmap/internal/detail"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	var (
		types  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show <group> <node>",
		Short: "Show the detail panel of a node",
		Long: `Print the typed attributes of one node of a group.

  gridmap show B1 r1
  gridmap show B1 r1 --locale fr
  gridmap show B1 r1 -o json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			group, id := args[0], args[1]
			ctrl := controller.New(openSource(),
				controller.WithLogger(logger),
				controller.WithLocale(locale()),
				controller.WithVisible(visibleTypes(types)),
			)
			st := selectView(cmd.Context(), ctrl, group)
			if st.Status == controller.Empty {
				ui.Bad.Printf("  Group %s has no data\n", group)
				os.Exit(1)
			}

			if err := ctrl.SelectNode(id); err != nil {
				if errors.Is(err, controller.ErrUnknownNode) {
					ui.Bad.Printf("  No visible node %q in group %s\n", id, group)
					fmt.Println(ui.Subtle.Sprint("  Try --types all, or `gridmap layout " + group + "` to list nodes"))
				} else {
					ui.Bad.Printf("  %v\n", err)
				}
				os.Exit(1)
			}
			p := ctrl.State().Detail

			switch format {
			case "json", "yaml":
				printEncoded(p, kgraph.Format(format))
			default:
				printPanel(p, locale())
			}
		},
	}

	cmd.Flags().StringVarP(&types, "types", "t", "all", typesUsage())
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

func printPanel(p *detail.Panel, loc taxonomy.Locale) {
	t, _ := taxonomy.Normalize(p.Type)
	fmt.Printf("\n  %s %s %s\n\n", ui.Swatch(t), ui.TypeColor(t).Sprint(p.Title), ui.Subtle.Sprint(p.ID))
	for _, r := range p.Rows {
		fmt.Printf("  %s  %s\n", ui.Brand.Sprintf("%-16s", r.Label), r.Value)
	}
	if len(p.Rows) == 1 {
		fmt.Println()
		fmt.Println(ui.Subtle.Sprint("  " + loc.Text("No attributes recorded.", "Aucun attribut renseigné.")))
	}
	fmt.Println()
}
