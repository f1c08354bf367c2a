package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/navpatch"
)

var planJSON bool

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show the navigation assignments for one page without writing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		patcher, err := buildPatcher(cfg)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening %s: %w", args[0], err)
		}
		defer f.Close()

		assignments, err := patcher.Plan(f)
		if err != nil {
			return fmt.Errorf("planning %s: %w", args[0], err)
		}
		pending := navpatch.Pending(assignments)

		if planJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"mode":        patcher.Table().Mode(),
				"assignments": assignments,
				"pending":     len(pending),
			})
		}

		out := cmd.OutOrStdout()
		if len(assignments) == 0 {
			fmt.Fprintf(out, "No navigation elements of %s match the redirect table.\n", args[0])
			return nil
		}

		isPending := make(map[navpatch.Element]bool, len(pending))
		for _, a := range pending {
			isPending[a.Element] = true
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tINDEX\tLABEL\tACTION\tDESTINATION\tSTATE")
		for _, a := range assignments {
			state := "done"
			if isPending[a.Element] {
				state = "pending"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
				a.Element.Kind, a.Element.Index, a.Label, a.Action, a.Href, state)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d assignment(s), %d pending (mode %s)\n",
			len(assignments), len(pending), patcher.Table().Mode())
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")
	rootCmd.AddCommand(planCmd)
}
