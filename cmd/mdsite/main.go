// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mdsite CLI, which builds a static
// HTML site from a tree of Markdown documents.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mdsite/internal/logging"
	"github.com/pdiddy/mdsite/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is replaced by the root command once --verbose is known.
var logger = logging.New(os.Stderr, false)

// rootCmd is the base command for the mdsite CLI.
var rootCmd = &cobra.Command{
	Use:   "mdsite",
	Short: "Build a static HTML site from a tree of Markdown documents",
	Long: `mdsite mirrors a source tree of Markdown documents (src/) into an output
tree of HTML pages (target/), rendering each document with pandoc and the
site template tmpl/main.tmpl.

Start a new site with "mdsite init", build it with "mdsite build", or keep
it rebuilt while you edit with "mdsite watch".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(os.Stderr, viper.GetBool("verbose"))
		slog.SetDefault(logger)
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./mdsite.yaml or ~/.config/mdsite/mdsite.yaml)")
	flags.String("root", ".", "site directory containing src/, target/ and tmpl/")
	flags.BoolP("verbose", "v", false, "log debug output")

	_ = viper.BindPFlag("root", flags.Lookup("root"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
}

func initConfig() {
	def := types.DefaultSiteConfig()
	viper.SetDefault("root", def.Root)
	viper.SetDefault("source_root", def.SourceRoot)
	viper.SetDefault("output_root", def.OutputRoot)
	viper.SetDefault("document_suffix", def.DocumentSuffix)
	viper.SetDefault("output_suffix", def.OutputSuffix)
	viper.SetDefault("max_path_length", def.MaxPathLength)
	viper.SetDefault("policy", string(def.Policy))
	viper.SetDefault("converter.backend", string(def.Converter.Backend))
	viper.SetDefault("converter.binary", def.Converter.Binary)
	viper.SetDefault("converter.image", def.Converter.Image)
	viper.SetDefault("converter.timeout", def.Converter.Timeout)
	viper.SetDefault("ledger.enabled", def.Ledger.Enabled)
	viper.SetDefault("ledger.path", def.Ledger.Path)

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mdsite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mdsite"))
		}
	}

	viper.SetEnvPrefix("MDSITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
	}
}

// siteConfig returns the effective configuration: defaults, then config
// file, then environment, then flags.
func siteConfig() (types.SiteConfig, error) {
	var cfg types.SiteConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
