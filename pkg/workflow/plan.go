// Package workflow implements the workflow engine: planning a task DAG
// into sequential phases, resolving templated task arguments, and
// executing each phase with bounded parallelism.
package workflow

import (
	"fmt"
	"regexp"

	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// referencePattern finds every ${...} template marker. legalReference
// then accepts only the two legal forms, ${ctx.FIELD} and
// ${tasks.TASK_ID.PATH}; anything else inside ${...} is a plan-time
// syntax error; there is no general expression language.
var referencePattern = regexp.MustCompile(`\$\{([^}]*)\}`)

var legalReference = regexp.MustCompile(`^(ctx\.[^.]+(\.[^.]+)*|tasks\.[^.]+\.[^.]+(\.[^.]+)*)$`)

// Plan is a workflow's task DAG organised into sequential phases: each
// phase is an anti-chain of tasks with no dependency between them, and
// every task's dependencies are fully contained in earlier phases.
type Plan struct {
	WorkflowID string
	Phases     [][]registry.WorkflowTask
	ByID       map[string]registry.WorkflowTask
}

// BuildPlan validates def's task DAG (unique ids, resolvable
// dependencies, no cycle, only legal template reference syntax) and
// groups it into phases via Kahn's algorithm: each round consumes every
// task whose dependencies are already satisfied, so round N+1 never
// depends only on round N-or-earlier tasks that haven't been consumed
// yet.
func BuildPlan(def *registry.WorkflowDefinition) (*Plan, error) {
	byID := make(map[string]registry.WorkflowTask, len(def.Tasks))
	for _, t := range def.Tasks {
		if t.TaskID == "" {
			return nil, splunkerrors.NewWorkflowInvalidError("workflow task has empty task_id", nil)
		}
		if _, dup := byID[t.TaskID]; dup {
			return nil, splunkerrors.NewWorkflowInvalidError(fmt.Sprintf("duplicate task_id %q", t.TaskID), nil)
		}
		byID[t.TaskID] = t
	}
	for _, t := range def.Tasks {
		for _, dep := range t.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, splunkerrors.NewWorkflowInvalidError(
					fmt.Sprintf("task %q depends on undefined task %q", t.TaskID, dep), nil)
			}
		}
		if err := validateReferenceSyntax(t); err != nil {
			return nil, err
		}
	}

	indegree := make(map[string]int, len(def.Tasks))
	dependents := make(map[string][]string, len(def.Tasks))
	for _, t := range def.Tasks {
		indegree[t.TaskID] = len(t.DependsOn)
		for _, dep := range t.DependsOn {
			dependents[dep] = append(dependents[dep], t.TaskID)
		}
	}

	var phases [][]registry.WorkflowTask
	remaining := len(def.Tasks)
	for remaining > 0 {
		var ready []string
		for id, deg := range indegree {
			if deg == 0 {
				ready = append(ready, id)
			}
		}
		if len(ready) == 0 {
			return nil, splunkerrors.NewWorkflowInvalidError(fmt.Sprintf("cycle detected in workflow %q", def.ID), nil)
		}

		phase := make([]registry.WorkflowTask, 0, len(ready))
		for _, id := range ready {
			phase = append(phase, byID[id])
			delete(indegree, id)
			remaining--
		}
		sortTasksByID(phase)
		phases = append(phases, phase)

		for _, t := range phase {
			for _, dependent := range dependents[t.TaskID] {
				if _, stillPending := indegree[dependent]; stillPending {
					indegree[dependent]--
				}
			}
		}
	}

	return &Plan{WorkflowID: def.ID, Phases: phases, ByID: byID}, nil
}

func sortTasksByID(tasks []registry.WorkflowTask) {
	for i := 1; i < len(tasks); i++ {
		for j := i; j > 0 && tasks[j].TaskID < tasks[j-1].TaskID; j-- {
			tasks[j], tasks[j-1] = tasks[j-1], tasks[j]
		}
	}
}

// validateReferenceSyntax walks t's arguments looking for ${...} template
// markers and rejects any that aren't a well-formed ctx.* or tasks.*.*
// reference. It does not check that the referenced task id or ctx field
// actually exists; that is a runtime concern (ReferenceError).
func validateReferenceSyntax(t registry.WorkflowTask) error {
	var walk func(v any) error
	walk = func(v any) error {
		switch val := v.(type) {
		case string:
			for _, m := range referencePattern.FindAllStringSubmatch(val, -1) {
				if !legalReference.MatchString(m[1]) {
					return splunkerrors.NewWorkflowInvalidError(
						fmt.Sprintf("task %q: malformed template reference %q", t.TaskID, m[0]), nil)
				}
			}
		case map[string]any:
			for _, item := range val {
				if err := walk(item); err != nil {
					return err
				}
			}
		case []any:
			for _, item := range val {
				if err := walk(item); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(map[string]any(t.Arguments))
}
