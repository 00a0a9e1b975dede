package splunk

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
)

func testConfig(t *testing.T, srv *httptest.Server, extra config.SplunkConfig) config.SplunkConfig {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := extra
	cfg.Host = host
	cfg.Port = port
	cfg.Scheme = config.SchemeHTTP
	return cfg
}

func TestNewClient_RejectsUnusableConfig(t *testing.T) {
	t.Parallel()
	_, err := NewClient(config.SplunkConfig{})
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.ConfigMissing, typed.Type)
}

func TestClient_Authenticate_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/auth/login", r.URL.Path)
		w.Write([]byte(`{"sessionKey":"abc123"}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Username: "admin", Password: "changeme"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	require.NoError(t, c.Authenticate(context.Background()))
	assert.Equal(t, "abc123", c.sessionKey)
}

func TestClient_Authenticate_TokenSkipsHandshake(t *testing.T) {
	t.Parallel()
	c, err := NewClient(config.SplunkConfig{Host: "h", Token: "tok"})
	require.NoError(t, err)
	assert.NoError(t, c.Authenticate(context.Background()))
}

func TestClient_Authenticate_RejectedCredentials(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Username: "admin", Password: "wrong"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	err = c.Authenticate(context.Background())
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.AuthFailed, typed.Type)
}

func TestClient_Ping_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/server/info", r.URL.Path)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestClient_Search_NormalizesAndDecodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "search index=main", r.Form.Get("search"))
		assert.Equal(t, "oneshot", r.Form.Get("exec_mode"))
		w.Write([]byte(`{"fields":["a"],"results":[{"a":"1"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	res, err := c.Search(context.Background(), "index=main", SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Fields)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "1", res.Results[0]["a"])
}

func TestClient_Search_PreservesLeadingPipe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "| makeresults", normalizeSearch("| makeresults"))
	assert.Equal(t, "search index=main", normalizeSearch("index=main"))
	assert.Equal(t, "search index=main", normalizeSearch("search index=main"))
}

func TestClient_GetServerInfo_Decodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/server/info", r.URL.Path)
		w.Write([]byte(`{"entry":[{"content":{"version":"9.1.2","serverName":"idx1","os_name":"Linux"}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	info, err := c.GetServerInfo(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Entry, 1)
	assert.Equal(t, "9.1.2", info.Entry[0].Content.Version)
	assert.Equal(t, "idx1", info.Entry[0].Content.ServerName)
}

func TestClient_GetServerInfo_AuthFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.GetServerInfo(context.Background())
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.AuthFailed, typed.Type)
}

func TestClient_GetIndex_Decodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/data/indexes/main", r.URL.Path)
		w.Write([]byte(`{"entry":[{"name":"main","content":{"totalEventCount":"123","currentDBSizeMB":"45","minTime":"t0","maxTime":"t1"}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	idx, err := c.GetIndex(context.Background(), "main")
	require.NoError(t, err)
	assert.Equal(t, "main", idx.Name)
	assert.EqualValues(t, 123, idx.TotalEventCount)
	assert.EqualValues(t, 45, idx.CurrentSizeMB)
}

func TestClient_GetIndex_NotFound(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry":[]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.GetIndex(context.Background(), "missing")
	require.Error(t, err)
	typed, ok := splunkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, splunkerrors.NotFound, typed.Type)
}

func TestClient_ListSavedSearches_Decodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/saved/searches", r.URL.Path)
		w.Write([]byte(`{"entry":[
			{"name":"errors last 24h","acl":{"owner":"admin"},"content":{"search":"search index=main error","disabled":false}}
		]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv, config.SplunkConfig{Token: "tok"})
	c, err := NewClient(cfg)
	require.NoError(t, err)

	searches, err := c.ListSavedSearches(context.Background())
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, "errors last 24h", searches[0].Name)
	assert.Equal(t, "admin", searches[0].Owner)
	assert.False(t, searches[0].Disabled)
}
