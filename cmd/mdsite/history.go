package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mdsite/internal/ledger"
	"github.com/pdiddy/mdsite/internal/site"
	"github.com/pdiddy/mdsite/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded builds",
	Long: `History lists recent builds from the ledger (.mdsite/ledger.db), newest
first. With --run it lists the pages of one build; with --export it writes
the runs and their pages as YAML or JSON to stdout.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := siteConfig()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	runID, _ := cmd.Flags().GetString("run")
	format, _ := cmd.Flags().GetString("export")

	store, err := ledger.Open(site.LedgerPath(cfg))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case format != "":
		return store.Export(ctx, out, format, limit)
	case runID != "":
		run, err := store.Run(ctx, runID)
		if err != nil {
			return err
		}
		printPages(out, run)
		return nil
	}

	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No builds recorded.")
		return nil
	}
	printRuns(out, runs)
	return nil
}

func printRuns(w io.Writer, runs []types.Run) {
	fmt.Fprintf(w, "%-36s  %-19s  %-9s  %-8s  %5s  %5s  %5s  %s\n",
		"ID", "STARTED", "BACKEND", "POLICY", "OK", "FAIL", "SKIP", "TOOK")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-9s  %-8s  %5d  %5d  %5d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Backend, r.Policy,
			r.Converted, r.Failed, r.Skipped, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

func printPages(w io.Writer, run types.Run) {
	fmt.Fprintf(w, "Run %s (%s, %d converted, %d failed)\n\n",
		run.ID, run.StartedAt.Local().Format(time.DateTime), run.Converted, run.Failed)
	for _, p := range run.Pages {
		switch p.Status {
		case types.PageFailed:
			fmt.Fprintf(w, "failed:    %s (%s)\n", p.SourcePath, p.Error)
		default:
			fmt.Fprintf(w, "converted: %s -> %s\n", p.SourcePath, p.OutputPath)
		}
	}
	if run.Error != "" {
		fmt.Fprintf(w, "\nerror: %s\n", run.Error)
	}
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyCmd.Flags().String("run", "", "show the pages of one run")
	historyCmd.Flags().String("export", "", "export runs with pages: yaml or json")

	rootCmd.AddCommand(historyCmd)
}
