package coretools

import (
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// getServerInfoTool surfaces the connected Splunk instance's version
// and platform details.
type getServerInfoTool struct{}

func (getServerInfoTool) Execute(hc *registry.HandlerContext, _ map[string]any) (any, error) {
	info, err := hc.Session.Client.GetServerInfo(hc.Ctx)
	if err != nil {
		return nil, err
	}
	if len(info.Entry) == 0 {
		return map[string]any{}, nil
	}
	content := info.Entry[0].Content
	return map[string]any{
		"version":     content.Version,
		"server_name": content.ServerName,
		"os_name":     content.OSName,
		"build":       content.Build,
		"cpu_arch":    content.CPUArch,
	}, nil
}
