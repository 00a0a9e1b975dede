package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

func searchParams() []registry.ToolParameter {
	return []registry.ToolParameter{
		{Name: "query", Type: "string", Required: true, Description: "SPL search string"},
		{Name: "max_count", Type: "integer", Required: false, Default: 100},
	}
}

func TestBuildObjectSchema(t *testing.T) {
	t.Parallel()
	doc := BuildObjectSchema(searchParams())
	assert.Equal(t, "object", doc["type"])
	props := doc["properties"].(map[string]any)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "max_count")
	assert.Equal(t, []string{"query"}, doc["required"])
}

func TestCompile_ValidSchemaParses(t *testing.T) {
	t.Parallel()
	_, err := Compile(BuildObjectSchema(searchParams()))
	require.NoError(t, err)
}

func TestCompile_InvalidSchemaFails(t *testing.T) {
	t.Parallel()
	_, err := Compile(map[string]any{"type": 12345})
	assert.Error(t, err)
}

func TestValidateArgs_MissingRequiredField(t *testing.T) {
	t.Parallel()
	compiled, err := Compile(BuildObjectSchema(searchParams()))
	require.NoError(t, err)

	errs, err := compiled.ValidateArgs(map[string]any{})
	require.NoError(t, err)
	require.NotEmpty(t, errs)
}

func TestValidateArgs_ValidArgsPass(t *testing.T) {
	t.Parallel()
	compiled, err := Compile(BuildObjectSchema(searchParams()))
	require.NoError(t, err)

	errs, err := compiled.ValidateArgs(map[string]any{"query": "index=main"})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateArgs_WrongType(t *testing.T) {
	t.Parallel()
	compiled, err := Compile(BuildObjectSchema(searchParams()))
	require.NoError(t, err)

	errs, err := compiled.ValidateArgs(map[string]any{"query": "index=main", "max_count": "not-a-number"})
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}
