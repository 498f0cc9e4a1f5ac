package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/msalah0e/gridmap/internal/ui"
	"github.com/msalah0e/gridmap/internal/vault"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage dashboard access tokens in the vault",
		Long: `Tokens are stored per dashboard URL, in the macOS Keychain or an
encrypted file, and used when [source] token is empty.`,
	}

	cmd.AddCommand(
		tokenSetCmd(),
		tokenRmCmd(),
		tokenListCmd(),
	)

	return cmd
}

// tokenURL is the dashboard named on the command line, or the configured one.
func tokenURL(args []string) string {
	if len(args) == 1 {
		return vault.Key(args[0])
	}
	return vault.Key(cfg.Source.BaseURL)
}

func tokenSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [url]",
		Short: "Store the token of a dashboard (read from stdin)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			url := tokenURL(args)

			fmt.Printf("  Enter token for %s: ", ui.Brand.Sprint(url))
			reader := bufio.NewReader(os.Stdin)
			value, _ := reader.ReadString('\n')
			value = strings.TrimSpace(value)

			if value == "" {
				ui.Warn.Println("  Empty value — token not stored")
				return
			}
			if err := vault.New().Set(url, value); err != nil {
				ui.Bad.Printf("  Failed to store token: %v\n", err)
				os.Exit(1)
			}
			ui.Good.Printf("  %s token for %s stored in vault\n", ui.StatusIcon(true), url)
		},
	}
}

func tokenRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [url]",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove the token of a dashboard",
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			url := tokenURL(args)
			if err := vault.New().Delete(url); err != nil {
				ui.Bad.Printf("  Failed to remove token: %v\n", err)
				os.Exit(1)
			}
			ui.Good.Printf("  %s token for %s removed\n", ui.StatusIcon(true), url)
		},
	}
}

func tokenListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List dashboards with a stored token",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := vault.New()
			urls, err := v.List()
			if err != nil {
				ui.Bad.Printf("  Failed to read vault: %v\n", err)
				os.Exit(1)
			}
			if len(urls) == 0 {
				fmt.Println("  No tokens stored. Add one with `gridmap token set <url>`.")
				return
			}
			var rows [][]string
			for _, u := range urls {
				rows = append(rows, []string{u, vault.Mask(vault.Lookup(v, u))})
			}
			ui.Table([]string{"DASHBOARD", "TOKEN"}, rows)
		},
	}
}
