package coretools

import (
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/splunk"
)

// runSearchTool runs an ad-hoc SPL search via the session's Splunk
// client and returns the decoded result rows.
type runSearchTool struct{}

func (runSearchTool) Execute(hc *registry.HandlerContext, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, splunkerrors.NewInvalidArgsError("query is required", nil)
	}

	opts := splunk.SearchOptions{}
	if v, ok := args["earliest_time"].(string); ok {
		opts.EarliestTime = v
	}
	if v, ok := args["latest_time"].(string); ok {
		opts.LatestTime = v
	}
	if v, ok := args["max_count"].(float64); ok {
		opts.MaxCount = int(v)
	}

	result, err := hc.Session.Client.Search(hc.Ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"fields":  result.Fields,
		"results": result.Results,
	}, nil
}
