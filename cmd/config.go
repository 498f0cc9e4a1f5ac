package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/gridmap/internal/config"
	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration, flags applied",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				shown := *cfg
				if shown.Source.Token != "" {
					shown.Source.Token = "********"
				}
				if err := toml.NewEncoder(os.Stdout).Encode(shown); err != nil {
					ui.Bad.Printf("  %v\n", err)
					os.Exit(1)
				}
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(config.Path())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default configuration if none exists",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if _, err := os.Stat(config.Path()); err == nil {
					fmt.Printf("  %s already exists\n", config.Path())
					return
				}
				if err := config.EnsureExists(); err != nil {
					ui.Bad.Printf("  Failed to write config: %v\n", err)
					os.Exit(1)
				}
				fmt.Printf("  %s wrote %s\n", ui.StatusIcon(true), config.Path())
			},
		},
	)

	return cmd
}
