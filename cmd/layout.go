package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/msalah0e/gridmap/internal/controller"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/scene"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func layoutCmd() *cobra.Command {
	var (
		types  string
		format string
	)

	cmd := &cobra.Command{
		Use:     "layout <group>",
		Short:   "Print the positioned nodes and styled edges of a group",
		Aliases: []string{"ls"},
		Long: `Fetch one group, filter it by the visible leaf types and print where
every node is placed.

  gridmap layout B1                       # configured types
  gridmap layout B1 --types risks,tools   # choose the leaf rows
  gridmap layout B1 -o json               # renderer input as JSON`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openView(cmd.Context(), args[0], visibleTypes(types))

			switch format {
			case "json", "yaml":
				printEncoded(st.Scene, kgraph.Format(format))
				return
			case "table":
			default:
				ui.Bad.Printf("  Unknown format %q (use table, json or yaml)\n", format)
				os.Exit(1)
			}

			ui.Banner("layout of " + args[0])
			if st.Status == controller.Empty {
				fmt.Println("  This group has no data.")
				return
			}
			printScene(st.Scene, locale())
		},
	}

	cmd.Flags().StringVarP(&types, "types", "t", "", typesUsage())
	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: table, json, yaml")
	return cmd
}

// openView selects group in a fresh controller and returns its state. Fetch
// failures end the command.
func openView(ctx context.Context, group string, visible taxonomy.Set) *controller.State {
	ctrl := controller.New(openSource(),
		controller.WithLogger(logger),
		controller.WithLocale(locale()),
		controller.WithVisible(visible),
	)
	return selectView(ctx, ctrl, group)
}

func selectView(ctx context.Context, ctrl *controller.Controller, group string) *controller.State {
	if err := ctrl.SelectGroup(ctx, group); err != nil {
		ui.Bad.Printf("  Failed to load group %s: %v\n", group, err)
		os.Exit(1)
	}
	st := ctrl.State()
	return &st
}

func printScene(sc *scene.Scene, loc taxonomy.Locale) {
	var rows [][]string
	for _, n := range sc.Nodes {
		rows = append(rows, []string{
			ui.Swatch(n.Type) + " " + n.ID,
			taxonomy.LabelOf(n.Type, loc),
			n.Title(),
			strconv.FormatFloat(n.X, 'f', -1, 64),
			strconv.FormatFloat(n.Y, 'f', -1, 64),
		})
	}
	ui.Table([]string{"NODE", "TYPE", "TITLE", "X", "Y"}, rows)
	fmt.Println()

	if len(sc.Rows) > 0 {
		fmt.Print("  Leaf rows: ")
		for i, r := range sc.Rows {
			if i > 0 {
				fmt.Print(ui.Subtle.Sprint(" · "))
			}
			fmt.Printf("%s %s ×%d", ui.Swatch(r.Type), taxonomy.LabelOf(r.Type, loc), r.Count)
		}
		fmt.Println()
	}
	fmt.Printf("  %d/%d nodes · %d/%d edges\n",
		sc.Stats.VisibleNodes, sc.Stats.TotalNodes, sc.Stats.VisibleEdges, sc.Stats.TotalEdges)
}

func printEncoded(v any, f kgraph.Format) {
	data, err := kgraph.Encode(v, f)
	if err != nil {
		ui.Bad.Printf("  Failed to encode: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
	if f == kgraph.JSON {
		fmt.Println()
	}
}
