// Package app provides the entry point for the splunk-mcp-server command-line application.
package app

import (
	"github.com/spf13/cobra"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
)

// NewRootCmd creates the root command for the splunk-mcp-server binary.
// With no subcommand it just prints help; "serve" is the only command
// that actually does anything, but keeping a root/subcommand split
// leaves room to add "discover" or "version" alongside it later without
// reshaping main.go.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "splunk-mcp-server",
		DisableAutoGenTag: true,
		Short:             "splunk-mcp-server exposes Splunk search and admin operations over MCP",
		Long: `splunk-mcp-server is an MCP server that lets AI clients run Splunk
searches, inspect saved searches and indexes, and drive multi-step
troubleshooting workflows, all discovered from on-disk component
manifests rather than hardcoded into the binary.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				logger.Errorf("displaying help: %v", err)
			}
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.SilenceUsage = true
	return rootCmd
}
