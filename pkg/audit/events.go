package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
)

// Event types for this server's audit trail: MCP dispatch and workflow
// run lifecycle.
const (
	EventToolCalled       = "mcp_tool_call"
	EventResourceRead     = "mcp_resource_read"
	EventPromptRendered   = "mcp_prompt_get"
	EventWorkflowStarted  = "workflow_started"
	EventWorkflowFinished = "workflow_finished"
	EventWorkflowCanceled = "workflow_cancelled"
	EventTaskStarted      = "workflow_task_started"
	EventTaskFinished     = "workflow_task_finished"
	EventTaskSkipped      = "workflow_task_skipped"
)

// Outcome of an audited operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
)

// Target field keys, reused across event kinds.
const (
	TargetKeyType         = "type"
	TargetKeyName         = "name"
	TargetKeyWorkflowID   = "workflow_id"
	TargetKeyWorkflowName = "workflow_name"
	TargetKeyTaskID       = "task_id"
	TargetKeyTool         = "tool"
)

// Target type values.
const (
	TargetTypeTool         = "tool"
	TargetTypeResource     = "resource"
	TargetTypePrompt       = "prompt"
	TargetTypeWorkflow     = "workflow"
	TargetTypeWorkflowTask = "workflow_task"
)

// Event is one structured audit record. It is logged as a single JSON
// line through pkg/logger rather than to a dedicated audit sink, since
// this server has no persistence layer of its own (spec Non-goals).
type Event struct {
	Type       string         `json:"type"`
	Outcome    string         `json:"outcome"`
	Timestamp  time.Time      `json:"timestamp"`
	ClientID   string         `json:"client_id,omitempty"`
	Target     map[string]any `json:"target,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// clientIDFromContext resolves the ClientIdentity this server attaches
// to every dispatched invocation, falling back to empty for contexts
// audit is invoked from outside of dispatch (none currently).
func clientIDFromContext(ctx context.Context) string {
	if identity, ok := config.IdentityFromContext(ctx); ok {
		return identity.ID
	}
	return ""
}

// log marshals and emits e at info level. Audit events are never
// dropped on a marshalling failure silently; a failure is itself logged.
func log(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Errorw("failed to marshal audit event", "type", e.Type, "error", err)
		return
	}
	logger.Infow("audit", "event", string(payload))
}
