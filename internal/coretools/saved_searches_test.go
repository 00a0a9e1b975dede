package coretools

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/splunk"
)

func TestListSavedSearchesTool_Execute(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry":[{"name":"s1","acl":{"owner":"admin"},"content":{"search":"search *","disabled":false}}]}`))
	}))
	defer srv.Close()

	hc := handlerContextFor(t, srv)
	data, err := listSavedSearchesTool{}.Execute(hc, nil)
	require.NoError(t, err)
	m := data.(map[string]any)
	searches := m["saved_searches"].([]splunk.SavedSearch)
	require.Len(t, searches, 1)
	assert.Equal(t, "s1", searches[0].Name)
	assert.Equal(t, "admin", searches[0].Owner)
}
