// Command splunk-mcp-server is the entry point for the Splunk MCP server.
package main

import (
	"fmt"
	"os"

	"github.com/hkgnobody/mcp-for-splunk-sub002/cmd/splunk-mcp-server/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "there was an error: %v\n", err)
		os.Exit(1)
	}
}
