package coretools

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/session"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/splunk"
)

func handlerContextFor(t *testing.T, srv *httptest.Server) *registry.HandlerContext {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := config.SplunkConfig{Host: host, Port: port, Scheme: config.SchemeHTTP, Token: "tok"}
	client, err := splunk.NewClient(cfg)
	require.NoError(t, err)

	return &registry.HandlerContext{
		Ctx:     context.Background(),
		Session: &session.Session{Fingerprint: "test", Client: client},
	}
}

func TestRunSearchTool_Execute(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "search index=main error", r.Form.Get("search"))
		w.Write([]byte(`{"fields":["_raw"],"results":[{"_raw":"boom"}]}`))
	}))
	defer srv.Close()

	hc := handlerContextFor(t, srv)
	data, err := runSearchTool{}.Execute(hc, map[string]any{"query": "index=main error"})
	require.NoError(t, err)
	m := data.(map[string]any)
	assert.Equal(t, []string{"_raw"}, m["fields"])
}

func TestRunSearchTool_RequiresQuery(t *testing.T) {
	t.Parallel()
	_, err := runSearchTool{}.Execute(&registry.HandlerContext{}, map[string]any{})
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.InvalidArgs, typed.Type)
}
