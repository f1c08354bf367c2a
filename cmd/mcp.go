package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/navpatch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing redirect table lookups and page plans to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "navpatch MCP server started on stdio (site=%s, routes=%d)\n",
			cfg.SiteDir, patcher.Table().Len())

		return mcpserver.NewServer(patcher, cfg.SiteDir, store).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
