package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/navpatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize navpatch configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure navpatch for your site and generates a .navpatch.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
