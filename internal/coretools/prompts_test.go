package coretools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

func TestTroubleshootingPrompt_Render_WithIndex(t *testing.T) {
	t.Parallel()
	text, err := troubleshootingPrompt{}.Render(&registry.HandlerContext{}, map[string]any{
		"symptom": "events missing since yesterday",
		"index":   "main",
	})
	require.NoError(t, err)
	assert.Contains(t, text, "events missing since yesterday")
	assert.Contains(t, text, "splunk://indexes/main")
	assert.Contains(t, text, "run_search")
}

func TestTroubleshootingPrompt_Render_NoSymptomFallsBackToGeneric(t *testing.T) {
	t.Parallel()
	text, err := troubleshootingPrompt{}.Render(&registry.HandlerContext{}, map[string]any{})
	require.NoError(t, err)
	assert.Contains(t, text, "unspecified data or search issue")
}
