package coretools

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServerInfoTool_Execute(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry":[{"content":{"version":"9.2.0","serverName":"idx1","os_name":"Linux"}}]}`))
	}))
	defer srv.Close()

	hc := handlerContextFor(t, srv)
	data, err := getServerInfoTool{}.Execute(hc, nil)
	require.NoError(t, err)
	m := data.(map[string]any)
	assert.Equal(t, "9.2.0", m["version"])
	assert.Equal(t, "idx1", m["server_name"])
}
