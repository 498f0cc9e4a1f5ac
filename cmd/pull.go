package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/msalah0e/gridmap/internal/cache"
	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func pullCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Save an offline copy of the dashboard's knowledge graph",
		Long: `Fetch every group with all leaf types and save the merged graph as a
dataset file. Later commands read it with --offline.

  gridmap pull
  gridmap layout B1 --offline`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if cfg.Source.Kind != config.SourceHTTP {
				ui.Warn.Println("  The source is already a dataset file; nothing to pull")
				return
			}
			if concurrency == 0 {
				concurrency = cfg.Export.Concurrency
			}

			ui.Banner("pulling " + cfg.Source.BaseURL)
			start := time.Now()
			snap, err := cache.Pull(cmd.Context(), openSource(), concurrency)
			if err != nil {
				ui.Bad.Printf("  Pull failed: %v\n", err)
				os.Exit(1)
			}
			path, err := cache.Save(cfg.Source.BaseURL, snap)
			if err != nil {
				ui.Bad.Printf("  Failed to save: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("  %s %d nodes · %d edges %s\n", ui.StatusIcon(true),
				snap.Stats.TotalNodes, snap.Stats.TotalEdges, ui.Subtle.Sprintf("%.1fs", time.Since(start).Seconds()))
			fmt.Printf("  %s\n", ui.Subtle.Sprint("Saved to "+path))
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Groups fetched at once (default from config)")
	return cmd
}
