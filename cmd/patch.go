package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/config"
	"github.com/ziadkadry99/navpatch/internal/ledger"
	"github.com/ziadkadry99/navpatch/internal/navpatch"
	"github.com/ziadkadry99/navpatch/internal/progress"
	"github.com/ziadkadry99/navpatch/internal/site"
	"github.com/ziadkadry99/navpatch/internal/watch"
)

var (
	patchWatch  bool
	patchOutput string
	patchDryRun bool
)

var patchCmd = &cobra.Command{
	Use:   "patch",
	Short: "Patch the navigation of every page in the built site",
	Long: `Runs one reconciliation pass over every page of the built site, rewriting tab
links and adding sidebar overlays for labels in the redirect table. Pages are
written in place unless --output is given. With --watch, a new pass runs each
time pages in the site dir change, for example after mkdocs rebuilds.`,
	RunE: runPatch,
}

func init() {
	patchCmd.Flags().BoolVar(&patchWatch, "watch", false, "re-run after the site dir changes")
	patchCmd.Flags().StringVarP(&patchOutput, "output", "o", "", "write patched pages to this directory instead of in place")
	patchCmd.Flags().BoolVar(&patchDryRun, "dry-run", false, "report what would change without writing")
	rootCmd.AddCommand(patchCmd)
}

func runPatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	patcher, err := buildPatcher(cfg)
	if err != nil {
		return err
	}

	store, closeLedger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := patchOnce(ctx, cfg, patcher, store); err != nil {
		return err
	}
	if !patchWatch {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", cfg.SiteDir)
	w := &watch.Watcher{Logger: logger}
	return w.Run(ctx, cfg.SiteDir, func(ctx context.Context, changed []string) {
		logger.Info("site changed", "pages", len(changed))
		if err := patchOnce(ctx, cfg, patcher, store); err != nil {
			logger.Error("patch pass failed", "error", err)
		}
	})
}

// patchOnce walks the site and runs one pass over every page.
func patchOnce(ctx context.Context, cfg *config.Config, patcher *navpatch.Patcher, store *ledger.Store) error {
	files, err := walkSite(cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No pages found in %s\n", cfg.SiteDir)
		return nil
	}

	reporter := progress.NewReporter()
	reporter.Start(len(files))

	runner := site.NewRunner(site.Options{
		Patcher:     patcher,
		Ledger:      store,
		SiteDir:     cfg.SiteDir,
		OutputDir:   patchOutput,
		Concurrency: cfg.MaxConcurrency,
		DryRun:      patchDryRun,
		Logger:      logger,
		OnProgress: func(current, total int, relPath string) {
			reporter.Update(current, relPath)
		},
	})

	result, err := runner.Run(ctx, files)
	reporter.Finish()
	if err != nil {
		return fmt.Errorf("patch pass failed: %w", err)
	}

	printRunSummary(result, patchDryRun)
	if n := len(result.Errors); n > 0 {
		return fmt.Errorf("%d page(s) failed", n)
	}
	return nil
}

func printRunSummary(result *site.RunResult, dryRun bool) {
	verb := "Patched"
	if dryRun {
		verb = "Would patch"
	}
	fmt.Fprintf(os.Stderr, "\n%s %d of %d pages (%d already up to date)\n",
		verb, result.Patched(), len(result.Files), result.Skipped())
	if verbose || dryRun {
		for _, f := range result.Files {
			if !f.Result.Changed() {
				continue
			}
			fmt.Fprintf(os.Stderr, "  %s: %d hrefs, %d overlays, %d links\n",
				f.RelPath, f.Result.HrefsChanged, f.Result.OverlaysInserted, f.Result.LinksRewritten)
		}
	}
	for _, err := range result.Errors {
		fmt.Fprintf(os.Stderr, "  error: %v\n", err)
	}
	if result.RunID != "" {
		fmt.Fprintf(os.Stderr, "Run ID: %s\n", result.RunID)
	}
}
