package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
)

func TestResolver_CtxReferenceResolvesNativeType(t *testing.T) {
	r, err := newResolver(map[string]any{"earliest_time": "-24h", "max_count": 50})
	require.NoError(t, err)

	resolved, err := r.resolveArguments(map[string]any{
		"earliest_time": "${ctx.earliest_time}",
		"max_count":     "${ctx.max_count}",
	})
	require.NoError(t, err)
	assert.Equal(t, "-24h", resolved["earliest_time"])
	assert.EqualValues(t, 50, resolved["max_count"])
}

func TestResolver_TaskReferenceResolvesAfterRecordResult(t *testing.T) {
	r, err := newResolver(nil)
	require.NoError(t, err)
	r.recordResult("search_errors", map[string]any{"result_count": 12, "index": "main"})

	resolved, err := r.resolveArguments(map[string]any{
		"count": "${tasks.search_errors.result_count}",
		"index": "${tasks.search_errors.index}",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 12, resolved["count"])
	assert.Equal(t, "main", resolved["index"])
}

func TestResolver_EmbeddedReferenceInterpolatesAsText(t *testing.T) {
	r, err := newResolver(map[string]any{"index": "main"})
	require.NoError(t, err)

	resolved, err := r.resolveArguments(map[string]any{
		"query": "search index=${ctx.index} error",
	})
	require.NoError(t, err)
	assert.Equal(t, "search index=main error", resolved["query"])
}

func TestResolver_DanglingCtxReferenceIsReferenceError(t *testing.T) {
	r, err := newResolver(map[string]any{"index": "main"})
	require.NoError(t, err)

	_, err = r.resolveArguments(map[string]any{"x": "${ctx.nope}"})
	require.Error(t, err)
	e, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.ReferenceError, e.Type)
}

func TestResolver_DanglingTaskReferenceIsReferenceError(t *testing.T) {
	r, err := newResolver(nil)
	require.NoError(t, err)

	_, err = r.resolveArguments(map[string]any{"x": "${tasks.never_ran.field}"})
	require.Error(t, err)
	e, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.ReferenceError, e.Type)
}

func TestResolver_DanglingTaskPathReferenceIsReferenceError(t *testing.T) {
	r, err := newResolver(nil)
	require.NoError(t, err)
	r.recordResult("a", map[string]any{"only_field": 1})

	_, err = r.resolveArguments(map[string]any{"x": "${tasks.a.missing_field}"})
	require.Error(t, err)
	e, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.ReferenceError, e.Type)
}

func TestResolver_ResolvesNestedMapsAndSlices(t *testing.T) {
	r, err := newResolver(map[string]any{"index": "main"})
	require.NoError(t, err)

	resolved, err := r.resolveArguments(map[string]any{
		"filters": []any{"${ctx.index}", "literal"},
		"nested":  map[string]any{"inner": "${ctx.index}"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"main", "literal"}, resolved["filters"])
	assert.Equal(t, map[string]any{"inner": "main"}, resolved["nested"])
}

func TestResolver_NoReferencesPassesThroughUnchanged(t *testing.T) {
	r, err := newResolver(nil)
	require.NoError(t, err)

	resolved, err := r.resolveArguments(map[string]any{"literal": "no templates here"})
	require.NoError(t, err)
	assert.Equal(t, "no templates here", resolved["literal"])
}
