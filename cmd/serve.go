package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/server"
	"github.com/ziadkadry99/navpatch/internal/watch"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the built site with navigation patched on the fly",
	Long: `Starts a preview server over the built site. HTML pages are patched as they
are served, so the site dir itself is left untouched. With --watch, connected
browsers reload after pages in the site dir change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Serve.Port = servePort
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

		srv := server.New(server.Config{
			Port:       cfg.Serve.Port,
			SiteDir:    cfg.SiteDir,
			AllowAll:   cfg.Serve.AllowAllOrigins,
			LiveReload: serveWatch,
		}, patcher, store, logger)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		if serveWatch {
			w := &watch.Watcher{Logger: logger}
			go func() {
				err := w.Run(ctx, cfg.SiteDir, func(ctx context.Context, changed []string) {
					logger.Info("site changed, reloading browsers", "pages", len(changed))
					srv.Reload()
				})
				if err != nil {
					logger.Error("watcher stopped", "error", err)
				}
			}()
		}

		fmt.Fprintf(os.Stderr, "navpatch %s preview on http://localhost:%d/\n", Version, cfg.Serve.Port)
		fmt.Fprintf(os.Stderr, "  Site: %s\n", absPath(cfg.SiteDir))
		fmt.Fprintf(os.Stderr, "  Mode: %s (%d routes)\n", patcher.Table().Mode(), patcher.Table().Len())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "port to listen on")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload browsers when the site changes")
	rootCmd.AddCommand(serveCmd)
}
