package cmd

import (
	"os"

	"github.com/msalah0e/gridmap/internal/controller"
	"github.com/msalah0e/gridmap/internal/state"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/tui"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func uiCmd() *cobra.Command {
	var (
		types string
		fresh bool
	)

	cmd := &cobra.Command{
		Use:     "ui [group]",
		Aliases: []string{"tui"},
		Short:   "Browse the knowledge graph in the terminal",
		Long: `Open the interactive map. Pick a group, toggle leaf types with 1-5,
move with the arrow keys and press enter for the detail panel.

The last group and types of each source are remembered.

  gridmap ui                 # resume where you left off
  gridmap ui B1              # open a group directly
  gridmap ui --fresh         # start from the group picker`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			src := openSource()
			name := sourceName(cfg.Source)
			visible := visibleTypes(types)

			var initial string
			if len(args) == 1 {
				initial = args[0]
			} else if last, ok := state.Last(name); ok && !fresh {
				initial = last.Group
				if types == "" {
					visible = last.Visible
				}
			}

			ctrl := controller.New(src,
				controller.WithLogger(logger),
				controller.WithLocale(locale()),
				controller.WithVisible(visible),
			)
			remember := func(group string, visible taxonomy.Set) {
				if err := state.Record(name, group, visible); err != nil {
					logger.Warn("saving view state failed", zap.Error(err))
				}
			}

			m := tui.New(cmd.Context(), ctrl, src, locale(), initial, remember)
			if err := tui.Run(m); err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&types, "types", "t", "", typesUsage())
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore the remembered view")
	return cmd
}
