package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/msalah0e/gridmap/internal/cache"
	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"dr"},
		Short:   "Health check — verify config, source, groups and offline copy",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Banner("health check")
			problems := 0

			if _, err := os.Stat(config.Path()); err == nil {
				fmt.Printf("  %s config %s\n", ui.StatusIcon(true), ui.Subtle.Sprint(config.Path()))
			} else {
				fmt.Printf("  %s config: defaults %s\n", ui.Subtle.Sprint("-"), ui.Subtle.Sprint("(gridmap config init)"))
			}

			name := sourceName(cfg.Source)
			if cfg.Source.Kind == config.SourceHTTP {
				if cfg.Source.Token != "" {
					fmt.Printf("  %s token set\n", ui.StatusIcon(true))
				} else {
					fmt.Printf("  %s no token %s\n", ui.Subtle.Sprint("-"), ui.Subtle.Sprint("(gridmap token set)"))
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Source.Timeout.Std())
			defer cancel()
			src := openSource()
			start := time.Now()
			groups, err := src.Groups(ctx)
			if err != nil {
				fmt.Printf("  %s source %s: %v\n", ui.StatusIcon(false), name, err)
				problems++
			} else {
				fmt.Printf("  %s source %s %s\n", ui.StatusIcon(true), name, ui.Subtle.Sprintf("%d groups, %dms", len(groups), time.Since(start).Milliseconds()))
			}
			if err == nil && len(groups) > 0 {
				problems += checkGroup(ctx, src, groups[0])
			}

			if cfg.Source.Kind == config.SourceHTTP {
				if cache.IsCached(cfg.Source.BaseURL) {
					fmt.Printf("  %s offline copy %s\n", ui.StatusIcon(true), ui.Subtle.Sprint(cache.Path(cfg.Source.BaseURL)))
				} else {
					fmt.Printf("  %s no offline copy %s\n", ui.Subtle.Sprint("-"), ui.Subtle.Sprint("(gridmap pull)"))
				}
			}

			fmt.Println()
			if problems > 0 {
				ui.Bad.Printf("  %d problem(s)\n", problems)
				os.Exit(1)
			}
			ui.Good.Println("  All good")
		},
	}
}

// checkGroup fetches one group and reports types the taxonomy does not know.
func checkGroup(ctx context.Context, src fetch.Fetcher, group kgraph.Node) int {
	snap, err := src.Fetch(ctx, fetch.Request{GroupID: group.ID, Types: taxonomy.AllLeaves})
	if err != nil {
		fmt.Printf("  %s group %s: %v\n", ui.StatusIcon(false), group.ID, err)
		return 1
	}
	fmt.Printf("  %s group %s %s\n", ui.StatusIcon(true), group.ID,
		ui.Subtle.Sprintf("%d nodes, %d edges", snap.Stats.TotalNodes, snap.Stats.TotalEdges))

	unknown := map[string]bool{}
	for _, n := range snap.Nodes {
		if !n.Type.Known() {
			unknown[n.TypeName()] = true
		}
	}
	for t := range unknown {
		fmt.Printf("  %s unknown node type %q %s\n", ui.WarnIcon(), t, ui.Subtle.Sprint("(drawn in the trailing row)"))
	}
	return 0
}
