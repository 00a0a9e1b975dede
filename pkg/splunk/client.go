// Package splunk is a minimal REST client for the Splunk management API:
// authentication, ad-hoc search, and a handful of introspection endpoints
// used by the discovery and workflow layers. It is not a Splunk SDK; it
// implements exactly the surface this server needs.
package splunk

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
)

const (
	authHeaderName    = "Authorization"
	authHeaderPrefix  = "Splunk "
	loginPath         = "/services/auth/login"
	searchJobPath     = "/services/search/jobs"
	serverInfoPath    = "/services/server/info"
	savedSearchesPath = "/services/saved/searches"
	indexesPath       = "/services/data/indexes"
)

// Client talks to one Splunk instance on behalf of one resolved config.
// It is not safe to mutate after construction; a new Client is built per
// SplunkConfig fingerprint by the session pool.
type Client struct {
	cfg        config.SplunkConfig
	httpClient *http.Client
	sessionKey string
}

// NewClient builds a Client for cfg. cfg must be Usable(); callers
// resolve that upstream (pkg/config.Resolve) before reaching the pool.
func NewClient(cfg config.SplunkConfig) (*Client, error) {
	if !cfg.Usable() {
		return nil, splunkerrors.NewConfigMissingError("splunk config is missing host or credentials", nil)
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}, //nolint:gosec // operator-controlled per invocation
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}, nil
}

// Authenticate exchanges username/password for a session key. It is a
// no-op when cfg carries a bearer token, since token auth needs no
// handshake.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.Token != "" {
		return nil
	}
	form := url.Values{
		"username":    {c.cfg.Username},
		"password":    {c.cfg.Password},
		"output_mode": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL()+loginPath, strings.NewReader(form.Encode()))
	if err != nil {
		return splunkerrors.NewInternalError("building login request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return splunkerrors.NewUnreachableError(fmt.Sprintf("connecting to %s", c.cfg.Host), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return splunkerrors.NewAuthFailedError("splunk rejected credentials", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return splunkerrors.NewUnreachableError(fmt.Sprintf("splunk login returned %d", resp.StatusCode), nil)
	}

	var decoded struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return splunkerrors.NewUnreachableError("decoding splunk login response", err)
	}
	c.sessionKey = decoded.SessionKey
	return nil
}

func (c *Client) authHeaderValue() string {
	if c.cfg.Token != "" {
		return authHeaderPrefix + "Bearer " + c.cfg.Token
	}
	return authHeaderPrefix + c.sessionKey
}

// Ping verifies connectivity and credentials against /services/server/info.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL()+serverInfoPath+"?output_mode=json", nil)
	if err != nil {
		return splunkerrors.NewInternalError("building ping request", err)
	}
	req.Header.Set(authHeaderName, c.authHeaderValue())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return splunkerrors.NewUnreachableError(fmt.Sprintf("connecting to %s", c.cfg.Host), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return splunkerrors.NewAuthFailedError("splunk rejected credentials", nil)
	default:
		return splunkerrors.NewUnreachableError(fmt.Sprintf("splunk server/info returned %d", resp.StatusCode), nil)
	}
}

// SearchResult is the decoded oneshot search response.
type SearchResult struct {
	Fields  []string         `json:"fields"`
	Results []map[string]any `json:"results"`
}

// SearchOptions tunes an ad-hoc search beyond the raw SPL string.
type SearchOptions struct {
	EarliestTime string
	LatestTime   string
	MaxCount     int
}

// Search runs query synchronously via Splunk's oneshot search mode and
// returns the decoded result rows. query is trimmed and prefixed with
// "search " unless it already starts with "search " or "|".
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	form := url.Values{
		"search":      {normalizeSearch(query)},
		"output_mode": {"json"},
		"exec_mode":   {"oneshot"},
	}
	if opts.EarliestTime != "" {
		form.Set("earliest_time", opts.EarliestTime)
	}
	if opts.LatestTime != "" {
		form.Set("latest_time", opts.LatestTime)
	}
	if opts.MaxCount > 0 {
		form.Set("count", fmt.Sprintf("%d", opts.MaxCount))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL()+searchJobPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, splunkerrors.NewInternalError("building search request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(authHeaderName, c.authHeaderValue())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, splunkerrors.NewUnreachableError(fmt.Sprintf("connecting to %s", c.cfg.Host), err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, splunkerrors.NewAuthFailedError("splunk rejected credentials", nil)
	default:
		return nil, splunkerrors.NewExecutionError(fmt.Sprintf("splunk search returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	var decoded SearchResult
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, splunkerrors.NewExecutionError("decoding splunk search response", err)
	}
	return &decoded, nil
}

func normalizeSearch(q string) string {
	trimmed := strings.TrimSpace(q)
	if strings.HasPrefix(trimmed, "search ") || strings.HasPrefix(trimmed, "|") {
		return trimmed
	}
	return "search " + trimmed
}

// sendRaw issues an authenticated GET against path under /services and
// returns the raw response body; GetServerInfo, GetIndex and
// ListSavedSearches decode their responses from it.
func (c *Client) sendRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL()+path, bytes.NewReader(nil))
	if err != nil {
		return nil, splunkerrors.NewInternalError("building request", err)
	}
	req.Header.Set(authHeaderName, c.authHeaderValue())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, splunkerrors.NewUnreachableError(fmt.Sprintf("connecting to %s", c.cfg.Host), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, splunkerrors.NewUnreachableError("reading response body", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, splunkerrors.NewAuthFailedError("splunk rejected credentials", nil)
	default:
		return nil, splunkerrors.NewExecutionError(fmt.Sprintf("%s returned %d", path, resp.StatusCode), nil)
	}
}

// ServerInfoResult is the subset of /services/server/info this server
// surfaces to clients.
type ServerInfoResult struct {
	Entry []struct {
		Content struct {
			Version      string `json:"version"`
			ServerName   string `json:"serverName"`
			OSName       string `json:"os_name"`
			Build        string `json:"build"`
			CPUArch      string `json:"cpu_arch"`
			VirtualCores int    `json:"numberOfVirtualCores"`
		} `json:"content"`
	} `json:"entry"`
}

// GetServerInfo reads /services/server/info for the instance's version,
// name, and platform details.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfoResult, error) {
	body, err := c.sendRaw(ctx, serverInfoPath+"?output_mode=json")
	if err != nil {
		return nil, err
	}
	var decoded ServerInfoResult
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, splunkerrors.NewExecutionError("decoding server info response", err)
	}
	return &decoded, nil
}

// SavedSearch is one entry from /services/saved/searches.
type SavedSearch struct {
	Name     string `json:"name"`
	Search   string `json:"search"`
	Owner    string `json:"owner,omitempty"`
	Disabled bool   `json:"disabled"`
}

type savedSearchesResponse struct {
	Entry []struct {
		Name string `json:"name"`
		ACL  struct {
			Owner string `json:"owner"`
		} `json:"acl"`
		Content struct {
			Search   string `json:"search"`
			Disabled bool   `json:"disabled"`
		} `json:"content"`
	} `json:"entry"`
}

// IndexSummary is the subset of /services/data/indexes/{name} this
// server surfaces through the splunk:// index resource.
type IndexSummary struct {
	Name            string `json:"name"`
	TotalEventCount int64  `json:"totalEventCount"`
	CurrentSizeMB   int64  `json:"currentDBSizeMB"`
	MinTime         string `json:"minTime"`
	MaxTime         string `json:"maxTime"`
}

type indexResponse struct {
	Entry []struct {
		Name    string `json:"name"`
		Content struct {
			TotalEventCount string `json:"totalEventCount"`
			CurrentDBSizeMB string `json:"currentDBSizeMB"`
			MinTime         string `json:"minTime"`
			MaxTime         string `json:"maxTime"`
		} `json:"content"`
	} `json:"entry"`
}

// GetIndex reads /services/data/indexes/{name} for one index's summary
// statistics. It returns NotFound when Splunk reports no matching entry.
func (c *Client) GetIndex(ctx context.Context, name string) (*IndexSummary, error) {
	body, err := c.sendRaw(ctx, indexesPath+"/"+url.PathEscape(name)+"?output_mode=json")
	if err != nil {
		return nil, err
	}
	var decoded indexResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, splunkerrors.NewExecutionError("decoding index response", err)
	}
	if len(decoded.Entry) == 0 {
		return nil, splunkerrors.NewNotFoundError(fmt.Sprintf("index %q not found", name), nil)
	}
	e := decoded.Entry[0]
	return &IndexSummary{
		Name:            e.Name,
		TotalEventCount: parseInt64(e.Content.TotalEventCount),
		CurrentSizeMB:   parseInt64(e.Content.CurrentDBSizeMB),
		MinTime:         e.Content.MinTime,
		MaxTime:         e.Content.MaxTime,
	}, nil
}

func parseInt64(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}

// ListSavedSearches lists the saved searches visible to the
// authenticated user, via /services/saved/searches.
func (c *Client) ListSavedSearches(ctx context.Context) ([]SavedSearch, error) {
	body, err := c.sendRaw(ctx, savedSearchesPath+"?output_mode=json&count=0")
	if err != nil {
		return nil, err
	}
	var decoded savedSearchesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, splunkerrors.NewExecutionError("decoding saved searches response", err)
	}
	out := make([]SavedSearch, 0, len(decoded.Entry))
	for _, e := range decoded.Entry {
		out = append(out, SavedSearch{
			Name:     e.Name,
			Search:   e.Content.Search,
			Owner:    e.ACL.Owner,
			Disabled: e.Content.Disabled,
		})
	}
	return out, nil
}
