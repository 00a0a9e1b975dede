// Package coretools implements the server's built-in Splunk tools,
// resources, and prompts: a handful of concrete operations (run a
// oneshot search, list saved searches, get server info, read an index
// summary resource, render a troubleshooting prompt) that give the
// Component Registry, Discovery Loader, MCP Surface Binder, and
// Workflow Engine something real to discover, register, and run.
//
// Every handler here registers itself with pkg/discovery's builtin
// tables from an init function; importing this package for its side
// effects is enough to make its manifests (under
// examples/components/core) dischargeable by the loader.
package coretools

import (
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/discovery"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

func init() {
	discovery.RegisterToolBuiltin("run_search", func() registry.ToolHandler { return runSearchTool{} })
	discovery.RegisterToolBuiltin("list_saved_searches", func() registry.ToolHandler { return listSavedSearchesTool{} })
	discovery.RegisterToolBuiltin("get_server_info", func() registry.ToolHandler { return getServerInfoTool{} })
	discovery.RegisterToolBuiltin("get_discovery_report", func() registry.ToolHandler { return getDiscoveryReportTool{} })
	discovery.RegisterResourceBuiltin("index_summary", func() registry.ResourceHandler { return indexSummaryResource{} })
	discovery.RegisterPromptBuiltin("troubleshooting", func() registry.PromptHandler { return troubleshootingPrompt{} })
}
