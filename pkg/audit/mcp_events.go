package audit

import (
	"context"
	"time"
)

// LogToolCalled audits one call_tool dispatch.
func LogToolCalled(ctx context.Context, toolName string, duration time.Duration, err error) {
	log(Event{
		Type:       EventToolCalled,
		Outcome:    outcomeOf(err),
		Timestamp:  time.Now(),
		ClientID:   clientIDFromContext(ctx),
		Target:     map[string]any{TargetKeyType: TargetTypeTool, TargetKeyName: toolName},
		DurationMS: duration.Milliseconds(),
		Error:      errString(err),
	})
}

// LogResourceRead audits one read_resource dispatch.
func LogResourceRead(ctx context.Context, uri string, duration time.Duration, err error) {
	log(Event{
		Type:       EventResourceRead,
		Outcome:    outcomeOf(err),
		Timestamp:  time.Now(),
		ClientID:   clientIDFromContext(ctx),
		Target:     map[string]any{TargetKeyType: TargetTypeResource, TargetKeyName: uri},
		DurationMS: duration.Milliseconds(),
		Error:      errString(err),
	})
}

// LogPromptRendered audits one get_prompt dispatch.
func LogPromptRendered(ctx context.Context, promptName string, duration time.Duration, err error) {
	log(Event{
		Type:       EventPromptRendered,
		Outcome:    outcomeOf(err),
		Timestamp:  time.Now(),
		ClientID:   clientIDFromContext(ctx),
		Target:     map[string]any{TargetKeyType: TargetTypePrompt, TargetKeyName: promptName},
		DurationMS: duration.Milliseconds(),
		Error:      errString(err),
	})
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
