package workflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
)

// resolver resolves ${ctx.FIELD} and ${tasks.TASK_ID.PATH} template
// references against a workflow's current run context and the data of
// tasks that have already finished. A run has exactly one resolver,
// reused across every task's argument resolution.
type resolver struct {
	ctxJSON  []byte
	taskJSON map[string][]byte
}

func newResolver(runContext map[string]any) (*resolver, error) {
	ctxJSON, err := json.Marshal(runContext)
	if err != nil {
		return nil, splunkerrors.NewInternalError("marshalling workflow context", err)
	}
	return &resolver{ctxJSON: ctxJSON, taskJSON: make(map[string][]byte)}, nil
}

// recordResult caches task taskID's result data so later tasks can
// reference ${tasks.taskID.PATH}. Only called for tasks that reached ok.
func (r *resolver) recordResult(taskID string, data any) {
	encoded, err := json.Marshal(data)
	if err != nil {
		// Unmarshalable data can still be referenced by tasks that
		// don't need it; the failure surfaces as a ReferenceError on
		// first actual lookup instead of here.
		encoded = []byte("null")
	}
	r.taskJSON[taskID] = encoded
}

// resolveArguments returns a deep copy of args with every template
// reference substituted, or a ReferenceError if a reference is dangling.
func (r *resolver) resolveArguments(args map[string]any) (map[string]any, error) {
	resolved, err := r.resolveValue(map[string]any(args))
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

func (r *resolver) resolveValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return r.resolveString(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			resolvedItem, err := r.resolveValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = resolvedItem
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			resolvedItem, err := r.resolveValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = resolvedItem
		}
		return out, nil
	default:
		return v, nil
	}
}

// resolveString substitutes every ${...} reference in s. A string that
// is exactly one reference resolves to the referenced value's native
// type (so a task can pass through a number or object); a string with
// embedded references interpolates each as text.
func (r *resolver) resolveString(s string) (any, error) {
	matches := referencePattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		ref := s[matches[0][2]:matches[0][3]]
		return r.lookup(ref)
	}

	out := make([]byte, 0, len(s))
	last := 0
	for _, m := range matches {
		out = append(out, s[last:m[0]]...)
		ref := s[m[2]:m[3]]
		value, err := r.lookup(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, stringify(value)...)
		last = m[1]
	}
	out = append(out, s[last:]...)
	return string(out), nil
}

func (r *resolver) lookup(ref string) (any, error) {
	switch {
	case len(ref) > 4 && ref[:4] == "ctx.":
		path := ref[4:]
		result := gjson.GetBytes(r.ctxJSON, path)
		if !result.Exists() {
			return nil, splunkerrors.NewReferenceError(fmt.Sprintf("ctx.%s does not resolve", path), nil)
		}
		return result.Value(), nil

	case len(ref) > 6 && ref[:6] == "tasks.":
		rest := ref[6:]
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			return nil, splunkerrors.NewReferenceError(fmt.Sprintf("tasks.%s is missing a result path", rest), nil)
		}
		taskID, path := rest[:dot], rest[dot+1:]
		data, ok := r.taskJSON[taskID]
		if !ok {
			return nil, splunkerrors.NewReferenceError(
				fmt.Sprintf("tasks.%s.%s references a task with no result yet", taskID, path), nil)
		}
		result := gjson.GetBytes(data, path)
		if !result.Exists() {
			return nil, splunkerrors.NewReferenceError(fmt.Sprintf("tasks.%s.%s does not resolve", taskID, path), nil)
		}
		return result.Value(), nil

	default:
		return nil, splunkerrors.NewReferenceError(fmt.Sprintf("unrecognised template reference %q", ref), nil)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(encoded)
	}
}
