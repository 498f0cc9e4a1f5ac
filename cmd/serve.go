package cmd

import (
	"fmt"
	"os"

	"github.com/msalah0e/gridmap/internal/api"
	"github.com/msalah0e/gridmap/internal/metrics"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenes, details and the taxonomy over HTTP",
		Long: `Start the HTTP surface. Every request fetches its group from the
configured source and lays it out.

  GET /api/scene?group=B1&types=risks,tools&format=json|yaml|dot|html
  GET /api/nodes/{id}?group=B1&locale=fr
  GET /api/taxonomy?locale=fr
  GET /api/groups
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			reg := metrics.NewRegistry()
			srv := api.New(openInstrumented(reg), api.Options{
				Logger:  logger,
				Metrics: reg,
				Visible: cfg.View.Visible,
				Locale:  locale(),
			})

			ui.Banner("serving " + sourceName(cfg.Source))
			fmt.Printf("  %s  http://%s\n", ui.Brand.Sprintf("%-10s", "Listening"), addr)
			fmt.Printf("  %s  http://%s/metrics\n\n", ui.Brand.Sprintf("%-10s", "Metrics"), addr)
			fmt.Println(ui.Subtle.Sprint("  Press Ctrl+C to stop"))

			if err := srv.ListenAndServe(cmd.Context(), addr); err != nil {
				ui.Bad.Printf("  Server error: %v\n", err)
				os.Exit(1)
			}
			ui.Good.Println("\n  Stopped")
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}
