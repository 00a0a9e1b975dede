package coretools

import (
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/discovery"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// getDiscoveryReportTool surfaces the most recent discovery run's
// counts-by-kind, counts-by-origin, and load failures.
type getDiscoveryReportTool struct{}

func (getDiscoveryReportTool) Execute(_ *registry.HandlerContext, _ map[string]any) (any, error) {
	report := discovery.LastReport()
	return map[string]any{
		"files_seen": report.FilesSeen,
		"by_kind":    report.ByKind,
		"by_origin":  report.ByOrigin,
		"failures":   report.Failures,
		"warnings":   report.Warnings,
		"ok":         report.OK(),
	}, nil
}
