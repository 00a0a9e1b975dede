package audit

import (
	"context"
	"time"
)

// WorkflowAuditor logs the lifecycle of one workflow run: start,
// finish/cancel at the run level, and start/finish/skip at the task
// level. Its method names mirror the run's own state machine so a
// caller can audit a transition the moment it happens.
type WorkflowAuditor struct{}

// NewWorkflowAuditor constructs a WorkflowAuditor. It carries no state
// of its own; logging is always routed through pkg/logger.
func NewWorkflowAuditor() *WorkflowAuditor {
	return &WorkflowAuditor{}
}

// LogWorkflowStarted logs the start of a workflow run.
func (*WorkflowAuditor) LogWorkflowStarted(ctx context.Context, workflowID, runID string, taskCount int) {
	log(Event{
		Type:      EventWorkflowStarted,
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflow,
			TargetKeyWorkflowID: workflowID,
			"run_id":            runID,
			"task_count":        taskCount,
		},
	})
}

// LogWorkflowFinished logs the terminal state of a workflow run
// (completed ok or failed); status is the run-level status string.
func (*WorkflowAuditor) LogWorkflowFinished(ctx context.Context, workflowID, runID, status string, duration time.Duration) {
	outcome := OutcomeSuccess
	if status != "ok" {
		outcome = OutcomeFailure
	}
	log(Event{
		Type:      EventWorkflowFinished,
		Outcome:   outcome,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflow,
			TargetKeyWorkflowID: workflowID,
			"run_id":            runID,
			"status":            status,
		},
		DurationMS: duration.Milliseconds(),
	})
}

// LogWorkflowCancelled logs an externally requested run cancellation.
func (*WorkflowAuditor) LogWorkflowCancelled(ctx context.Context, workflowID, runID string, duration time.Duration) {
	log(Event{
		Type:      EventWorkflowCanceled,
		Outcome:   OutcomeFailure,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflow,
			TargetKeyWorkflowID: workflowID,
			"run_id":            runID,
		},
		DurationMS: duration.Milliseconds(),
	})
}

// LogTaskStarted logs one task transitioning to running.
func (*WorkflowAuditor) LogTaskStarted(ctx context.Context, workflowID, taskID, tool string) {
	log(Event{
		Type:      EventTaskStarted,
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflowTask,
			TargetKeyWorkflowID: workflowID,
			TargetKeyTaskID:     taskID,
			TargetKeyTool:       tool,
		},
	})
}

// LogTaskFinished logs one task reaching a terminal state other than
// skipped (ok, failed, timeout, or cancelled).
func (*WorkflowAuditor) LogTaskFinished(ctx context.Context, workflowID, taskID, status string, duration time.Duration, err error) {
	outcome := OutcomeSuccess
	if status != "ok" {
		outcome = OutcomeFailure
	}
	log(Event{
		Type:      EventTaskFinished,
		Outcome:   outcome,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflowTask,
			TargetKeyWorkflowID: workflowID,
			TargetKeyTaskID:     taskID,
			"status":            status,
		},
		DurationMS: duration.Milliseconds(),
		Error:      errString(err),
	})
}

// LogTaskSkipped logs a task that never ran because a dependency failed.
func (*WorkflowAuditor) LogTaskSkipped(ctx context.Context, workflowID, taskID, reason string) {
	log(Event{
		Type:      EventTaskSkipped,
		Outcome:   OutcomeSuccess,
		Timestamp: time.Now(),
		ClientID:  clientIDFromContext(ctx),
		Target: map[string]any{
			TargetKeyType:       TargetTypeWorkflowTask,
			TargetKeyWorkflowID: workflowID,
			TargetKeyTaskID:     taskID,
			"reason":            reason,
		},
	})
}
