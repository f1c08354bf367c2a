package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "navpatch",
	Short: "Repair MkDocs-Material tab and sidebar navigation",
	Long: `navpatch rewrites the navigation tabs and sidebar section labels of a built
MkDocs-Material site so each one lands on the page a redirect table names,
using the URL shape of the target deployment. It can patch a site in place,
serve a live-patched preview, and check the result in a headless browser.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

