package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/server"
	"github.com/ziadkadry99/navpatch/internal/verify"
)

var (
	verifyPages []string
	verifyServe bool
	verifyJSON  bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the navigation of served pages in headless Chrome",
	Long: `Opens each page of the site in headless Chrome, waits for the navigation
runtime to settle, and compares every tab link and sidebar overlay with the
redirect table. By default pages are loaded from verify.base_url; with --serve
an in-process preview server patches them on the fly instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		patcher, err := buildPatcher(cfg)
		if err != nil {
			return err
		}
		settle, err := cfg.SettleDuration()
		if err != nil {
			return err
		}

		paths := verifyPages
		if len(paths) == 0 {
			files, err := walkSite(cfg)
			if err != nil {
				return err
			}
			for _, f := range files {
				paths = append(paths, verify.PagePath(f.RelPath))
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no pages to verify")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		baseURL := cfg.Verify.BaseURL
		if verifyServe {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return fmt.Errorf("starting preview listener: %w", err)
			}
			srv := server.New(server.Config{SiteDir: cfg.SiteDir}, patcher, nil, logger)
			httpSrv := &http.Server{Handler: srv.Router()}
			go httpSrv.Serve(ln)
			defer httpSrv.Close()
			baseURL = fmt.Sprintf("http://%s/", ln.Addr())
		}

		fmt.Fprintf(os.Stderr, "Verifying %d pages at %s\n", len(paths), baseURL)
		v := verify.New(verify.Config{
			BaseURL:   baseURL,
			RemoteURL: cfg.Verify.RemoteURL,
			Settle:    settle,
			Logger:    logger,
		}, patcher.Table())

		report, err := v.Run(ctx, paths)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if verifyJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			for _, m := range report.Mismatches {
				fmt.Fprintf(out, "%s: %s %q points to %q, want %q\n", m.Page, m.Kind, m.Label, m.Got, m.Want)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(out, "error: %s\n", e)
			}
			fmt.Fprintf(out, "%d pages, %d elements, %d mismatches, %d errors\n",
				report.Pages, report.Elements, len(report.Mismatches), len(report.Errors))
		}

		if !report.OK() {
			return fmt.Errorf("navigation does not match the redirect table")
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringSliceVar(&verifyPages, "page", nil, "URL path to verify (repeatable; default: every page)")
	verifyCmd.Flags().BoolVar(&verifyServe, "serve", false, "serve the site in-process instead of using verify.base_url")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(verifyCmd)
}
