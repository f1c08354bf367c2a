package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/sourcecheck"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every route's destination page exists in the docs sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		routes, err := cfg.ResolveRoutes()
		if err != nil {
			return fmt.Errorf("resolving routes: %w", err)
		}

		report, err := sourcecheck.Check(cfg.DocsDir, routes)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LABEL\tPAGE\tSOURCE\tTITLE")
		for _, p := range report.Pages {
			source := p.Source
			if p.Missing {
				source = "MISSING"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Label, p.Page, source, p.Title)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if missing := report.Missing(); len(missing) > 0 {
			return fmt.Errorf("%d route(s) point to pages missing from %s", len(missing), cfg.DocsDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
