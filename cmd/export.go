package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/msalah0e/gridmap/internal/fetch"
	"github.com/msalah0e/gridmap/internal/kgraph"
	"github.com/msalah0e/gridmap/internal/parallel"
	"github.com/msalah0e/gridmap/internal/scene"
	"github.com/msalah0e/gridmap/internal/taxonomy"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

var exportFormats = map[string]string{
	"html": ".html",
	"dot":  ".dot",
	"json": ".json",
	"yaml": ".yaml",
}

func exportCmd() *cobra.Command {
	var (
		types       string
		format      string
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export [group...]",
		Short: "Export group scenes as HTML, DOT, JSON or YAML",
		Long: `Render one file per group. Without arguments every group of the source
is exported. Groups are fetched in parallel.

  gridmap export B1 -f html            # ./B1.html
  gridmap export -f dot -d out/        # every group as Graphviz
  gridmap export B1 -f json -d -       # write to stdout
  neato -n2 -Tsvg B1.dot > B1.svg`,
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			ext, ok := exportFormats[format]
			if !ok {
				ui.Bad.Printf("  Unknown format %q (use html, dot, json or yaml)\n", format)
				os.Exit(1)
			}
			ctx := cmd.Context()
			src := openSource()
			visible := visibleTypes(types)
			loc := locale()

			groups := args
			if len(groups) == 0 {
				nodes, err := src.Groups(ctx)
				if err != nil {
					ui.Bad.Printf("  Failed to list groups: %v\n", err)
					os.Exit(1)
				}
				for _, n := range nodes {
					groups = append(groups, n.ID)
				}
			}
			if len(groups) == 0 {
				fmt.Println("  No groups to export.")
				return
			}

			if outDir == "-" {
				if len(groups) != 1 {
					ui.Bad.Println("  Writing to stdout needs exactly one group")
					os.Exit(1)
				}
				data, err := exportGroup(ctx, src, groups[0], visible, format, loc)
				if err != nil {
					ui.Bad.Printf("  %s: %v\n", groups[0], err)
					os.Exit(1)
				}
				os.Stdout.Write(data)
				return
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				ui.Bad.Printf("  %v\n", err)
				os.Exit(1)
			}
			if concurrency == 0 {
				concurrency = cfg.Export.Concurrency
			}

			ui.Banner(fmt.Sprintf("exporting %d groups as %s", len(groups), format))
			tasks := make([]parallel.Task, len(groups))
			for i, g := range groups {
				path := filepath.Join(outDir, fileName(g)+ext)
				tasks[i] = parallel.Task{
					Name: g,
					Fn: func(ctx context.Context) (string, error) {
						data, err := exportGroup(ctx, src, g, visible, format, loc)
						if err != nil {
							return "", err
						}
						if err := os.WriteFile(path, data, 0o644); err != nil {
							return "", err
						}
						return "→ " + path, nil
					},
				}
			}

			results := parallel.Run(ctx, os.Stdout, tasks, concurrency)
			failed := parallel.Failed(results)
			fmt.Printf("\n  %d exported", len(results)-failed)
			if failed > 0 {
				fmt.Printf(" · %d failed\n", failed)
				os.Exit(1)
			}
			fmt.Println()
		},
	}

	cmd.Flags().StringVarP(&types, "types", "t", "", typesUsage())
	cmd.Flags().StringVarP(&format, "format", "f", "html", "Export format: html, dot, json, yaml")
	cmd.Flags().StringVarP(&outDir, "dir", "d", ".", "Output directory, or - for stdout")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Groups fetched at once (default from config)")
	return cmd
}

// exportGroup fetches one group and renders its scene.
func exportGroup(ctx context.Context, src fetch.Fetcher, group string, visible taxonomy.Set, format string, loc taxonomy.Locale) ([]byte, error) {
	snap, err := src.Fetch(ctx, fetch.Request{GroupID: group, Types: visible})
	if err != nil {
		return nil, err
	}
	sc := scene.Build(snap, visible)

	title := group
	if n, ok := snap.Node(group); ok {
		title = n.Title()
	}

	switch format {
	case "html":
		page, err := sc.ExportHTML(title, loc)
		return []byte(page), err
	case "dot":
		return []byte(sc.ExportDOT(title)), nil
	default:
		data, err := kgraph.Encode(sc, kgraph.Format(format))
		if err != nil {
			return nil, err
		}
		if format == "json" {
			data = append(data, '\n')
		}
		return data, nil
	}
}

// fileName keeps a group id usable as a file name.
func fileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, id)
}
