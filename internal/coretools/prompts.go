package coretools

import (
	"fmt"
	"strings"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// troubleshootingPrompt renders a starting-point investigation prompt
// for a reported Splunk symptom, naming the concrete tools an assistant
// should reach for next.
type troubleshootingPrompt struct{}

func (troubleshootingPrompt) Render(_ *registry.HandlerContext, args map[string]any) (string, error) {
	symptom, _ := args["symptom"].(string)
	if symptom == "" {
		symptom = "unspecified data or search issue"
	}
	index, _ := args["index"].(string)

	var b strings.Builder
	fmt.Fprintf(&b, "You are troubleshooting the following Splunk symptom: %s.\n\n", symptom)
	if index != "" {
		fmt.Fprintf(&b, "The affected index is %q. Start by reading splunk://indexes/%s to confirm recent event counts and time bounds.\n", index, index)
	}
	b.WriteString("Use get_server_info to confirm you're talking to the expected instance, ")
	b.WriteString("list_saved_searches to see if an existing search already covers this, ")
	b.WriteString("and run_search with a narrow earliest_time/latest_time window before widening it.\n")
	b.WriteString("If several of these steps depend on each other, consider running the missing_data_troubleshooting workflow instead of calling them one at a time.")
	return b.String(), nil
}
