package coretools

import (
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// indexSummaryResource reads splunk://indexes/{name}, binding the
// {name} URI template segment to an index lookup against the resolved
// Splunk session.
type indexSummaryResource struct{}

func (indexSummaryResource) Read(hc *registry.HandlerContext, binding map[string]string) (any, error) {
	name := binding["name"]
	if name == "" {
		return nil, splunkerrors.NewInvalidArgsError("index name is required in the resource uri", nil)
	}
	idx, err := hc.Session.Client.GetIndex(hc.Ctx, name)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"name":              idx.Name,
		"total_event_count": idx.TotalEventCount,
		"current_size_mb":   idx.CurrentSizeMB,
		"min_time":          idx.MinTime,
		"max_time":          idx.MaxTime,
	}, nil
}
