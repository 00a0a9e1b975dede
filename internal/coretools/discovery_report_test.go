package coretools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/discovery"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

func TestGetDiscoveryReportTool_Execute(t *testing.T) {
	discovery.SetLastReport(discovery.Report{
		FilesSeen: 3,
		ByKind:    map[registry.Kind]int{registry.KindTool: 2},
		ByOrigin:  map[registry.Origin]int{registry.OriginCore: 2},
	})

	data, err := getDiscoveryReportTool{}.Execute(&registry.HandlerContext{}, nil)
	require.NoError(t, err)
	m := data.(map[string]any)
	assert.EqualValues(t, 3, m["files_seen"])
	assert.Equal(t, true, m["ok"])
}
