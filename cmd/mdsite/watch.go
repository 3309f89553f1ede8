package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mdsite/internal/site"
	"github.com/pdiddy/mdsite/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build, then rebuild whenever src/ or tmpl/ changes",
	Long: `Watch runs a full build, then watches the source tree and the template
directory. Every burst of changes triggers another full build. Build
failures are logged and watching continues. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := siteConfig()
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		b, err := site.NewBuilder(ctx, cfg, nil, logger)
		if err != nil {
			return err
		}
		rebuild := func(ctx context.Context) error {
			_, err := b.Build(ctx)
			return err
		}

		// The first build's failures are already logged; keep watching.
		if err := rebuild(ctx); errors.Is(err, context.Canceled) {
			return nil
		}
		return watch.New(site.WatchDirs(cfg), rebuild, debounce, logger).Run(ctx)
	},
}

func init() {
	bindBuildFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a rebuild")
	rootCmd.AddCommand(watchCmd)
}
