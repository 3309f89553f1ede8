package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Config prints the configuration a build would use after merging defaults,
the config file, MDSITE_* environment variables and flags. The output is a
valid mdsite.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
