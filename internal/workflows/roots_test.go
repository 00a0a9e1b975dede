package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

func TestCoreRoots_CoversAllFourKinds(t *testing.T) {
	roots := CoreRoots("/srv/examples")
	require.Len(t, roots, 4)

	byKind := make(map[registry.Kind]string, len(roots))
	for _, r := range roots {
		assert.Equal(t, registry.OriginCore, r.Origin)
		byKind[r.Kind] = r.Path
	}
	assert.Equal(t, "/srv/examples/components/core/tools", byKind[registry.KindTool])
	assert.Equal(t, "/srv/examples/components/core/resources", byKind[registry.KindResource])
	assert.Equal(t, "/srv/examples/components/core/prompts", byKind[registry.KindPrompt])
	assert.Equal(t, "/srv/examples/workflows", byKind[registry.KindWorkflow])
}

func TestContribRoots_MirrorsLayoutUnderContribOrigin(t *testing.T) {
	roots := ContribRoots("/etc/splunk-mcp/contrib")
	require.Len(t, roots, 4)
	for _, r := range roots {
		assert.Equal(t, registry.OriginContrib, r.Origin)
	}
}
