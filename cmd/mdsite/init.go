package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mdsite/internal/site"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the site layout and starter files",
	Long: `Init creates src/, target/ and tmpl/ under the site root, plus a starter
src/index.md and tmpl/main.tmpl. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig()
		if err != nil {
			return err
		}
		created, err := site.Scaffold(cfg)
		for _, p := range created {
			fmt.Fprintln(cmd.OutOrStdout(), "  ", p)
		}
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Site already initialized.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Site initialized.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
