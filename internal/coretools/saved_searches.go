package coretools

import (
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// listSavedSearchesTool lists the saved searches visible to the
// resolved Splunk identity.
type listSavedSearchesTool struct{}

func (listSavedSearchesTool) Execute(hc *registry.HandlerContext, _ map[string]any) (any, error) {
	searches, err := hc.Session.Client.ListSavedSearches(hc.Ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"saved_searches": searches}, nil
}
