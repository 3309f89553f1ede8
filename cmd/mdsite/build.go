package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mdsite/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every document under src/ into target/",
	Long: `Build walks the source tree depth-first. Each Markdown document is rendered
to the matching path under the output root, creating directories as needed:

  src/index.md          -> target/index.html
  src/notes/os/vmem.md  -> target/notes/os/vmem.html

Files without the document suffix are ignored. With --policy strict (the
default) a failing document stops the rest of its directory; failures
inside a subdirectory never stop its siblings. With --policy isolate every
document is attempted. Any failure makes the command exit non-zero.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := siteConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := site.NewBuilder(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	_, err = b.Build(ctx)
	return err
}

// bindBuildFlags registers the flags shared by build and watch.
func bindBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("backend", "", "converter backend: pandoc, container, or goldmark")
	cmd.Flags().String("policy", "", "error policy: strict or isolate")
	cmd.Flags().Duration("timeout", 0, "per-document conversion timeout (0 = none)")
	cmd.Flags().Bool("no-ledger", false, "do not record the build in the ledger")

	// Bound at run time: build and watch share the viper keys.
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for key, flag := range map[string]string{
			"converter.backend": "backend",
			"policy":            "policy",
			"converter.timeout": "timeout",
		} {
			if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		if noLedger, _ := cmd.Flags().GetBool("no-ledger"); noLedger {
			viper.Set("ledger.enabled", false)
		}
		return nil
	}
}

func init() {
	bindBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
