package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/audit"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// TaskStatus is a task's position in its state machine. Every status
// except pending and running is terminal.
type TaskStatus string

// Recognised task statuses.
const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskOK        TaskStatus = "ok"
	TaskFailed    TaskStatus = "failed"
	TaskTimeout   TaskStatus = "timeout"
	TaskCancelled TaskStatus = "cancelled"
	TaskSkipped   TaskStatus = "skipped"
)

// RunStatus is the terminal status of a whole workflow run.
type RunStatus string

// Recognised run statuses.
const (
	RunOK        RunStatus = "ok"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// TaskResult is the recorded outcome of one task within a run.
type TaskResult struct {
	TaskID     string
	Tool       string
	Status     TaskStatus
	Data       any
	Error      string
	Reason     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunSummary is the structured report produced at the end of a run,
// independent of whether a narrative could be generated for it.
type RunSummary struct {
	RunID          string
	WorkflowID     string
	Status         RunStatus
	StartedAt      time.Time
	FinishedAt     time.Time
	Tasks          []TaskResult
	Narrative      string
	NarrativeError string
}

// CallTool is the hook the engine uses to actually execute a task's
// tool. It mirrors registry.HandlerContext.CallTool plus a leading
// context carrying the task's deadline, so the engine can be driven
// either through the MCP dispatcher or directly in tests.
type CallTool func(ctx context.Context, tool string, args map[string]any) (any, error)

// Engine runs workflow definitions.
type Engine struct {
	parallelism int
	summarizer  Summarizer
	auditor     *audit.WorkflowAuditor
	metrics     *engineMetrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallelism overrides the default per-phase parallelism limit of 8.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// WithSummarizer installs a narrative Summarizer. Without one, runs
// carry no narrative and no narrative error.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) { e.summarizer = s }
}

// WithMetricsRegisterer registers the engine's Prometheus metrics on reg
// instead of the default registerer; primarily for tests. Registration
// errors are ignored, so a second Engine on the default registerer
// does not panic but its metrics are not registered.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = newEngineMetrics(reg) }
}

// NewEngine constructs an Engine with an 8-way default parallelism and
// metrics registered against the default Prometheus registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{parallelism: 8, auditor: audit.NewWorkflowAuditor(), metrics: newEngineMetrics(prometheus.DefaultRegisterer)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run plans def's task DAG and executes it phase by phase, resolving
// templated arguments against runContext and prior task results, until
// every task reaches a terminal state, ctx is cancelled, or the plan
// itself is rejected as invalid.
func (e *Engine) Run(ctx context.Context, def *registry.WorkflowDefinition, runContext map[string]any, call CallTool) (*RunSummary, error) {
	plan, err := BuildPlan(def)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(def.DefaultContext)+len(runContext))
	for k, v := range def.DefaultContext {
		merged[k] = v
	}
	for k, v := range runContext {
		merged[k] = v
	}

	res, err := newResolver(merged)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	summary := &RunSummary{RunID: runID, WorkflowID: def.ID, StartedAt: time.Now()}
	e.auditor.LogWorkflowStarted(ctx, def.ID, runID, len(def.Tasks))

	status := make(map[string]TaskStatus, len(def.Tasks))
	results := make(map[string]TaskResult, len(def.Tasks))
	for _, t := range def.Tasks {
		status[t.TaskID] = TaskPending
	}

	cancelled := false
phaseLoop:
	for _, phase := range plan.Phases {
		if ctx.Err() != nil {
			cancelled = true
			break phaseLoop
		}

		var runnable []registry.WorkflowTask
		for _, t := range phase {
			skipReason, skip := e.shouldSkip(t, plan, status)
			if skip {
				status[t.TaskID] = TaskSkipped
				results[t.TaskID] = TaskResult{TaskID: t.TaskID, Tool: t.Tool, Status: TaskSkipped, Reason: skipReason}
				e.auditor.LogTaskSkipped(ctx, def.ID, t.TaskID, skipReason)
				continue
			}
			runnable = append(runnable, t)
		}

		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(e.parallelism)
		taskResults := make(chan TaskResult, len(runnable))

		for _, t := range runnable {
			t := t
			status[t.TaskID] = TaskRunning
			group.Go(func() error {
				taskResults <- e.runTask(gctx, def.ID, t, res, call)
				return nil
			})
		}
		_ = group.Wait()
		close(taskResults)

		for tr := range taskResults {
			status[tr.TaskID] = tr.Status
			results[tr.TaskID] = tr
			if tr.Status == TaskOK {
				res.recordResult(tr.TaskID, tr.Data)
			}
		}

		if ctx.Err() != nil {
			cancelled = true
			break phaseLoop
		}
	}

	if cancelled {
		for id, st := range status {
			if st == TaskPending || st == TaskRunning {
				t := plan.ByID[id]
				status[id] = TaskCancelled
				results[id] = TaskResult{TaskID: id, Tool: t.Tool, Status: TaskCancelled, Reason: "workflow run was cancelled"}
			}
		}
	}

	summary.FinishedAt = time.Now()
	summary.Tasks = orderedResults(plan, results)
	summary.Status = runStatus(cancelled, summary.Tasks)

	e.metrics.observeRun(string(summary.Status), summary.FinishedAt.Sub(summary.StartedAt))
	if cancelled {
		e.auditor.LogWorkflowCancelled(ctx, def.ID, runID, summary.FinishedAt.Sub(summary.StartedAt))
	} else {
		e.auditor.LogWorkflowFinished(ctx, def.ID, runID, string(summary.Status), summary.FinishedAt.Sub(summary.StartedAt))
	}

	if e.summarizer != nil {
		narrative, err := e.summarizer.Summarize(ctx, summary)
		if err != nil {
			summary.NarrativeError = err.Error()
		} else {
			summary.Narrative = narrative
		}
	}

	return summary, nil
}

// shouldSkip reports whether t must be skipped because a direct
// dependency failed (and was not continue_on_error) or was itself
// skipped.
func (e *Engine) shouldSkip(t registry.WorkflowTask, plan *Plan, status map[string]TaskStatus) (string, bool) {
	for _, dep := range t.DependsOn {
		depStatus := status[dep]
		switch depStatus {
		case TaskSkipped:
			return "dependency " + dep + " was skipped", true
		case TaskFailed, TaskTimeout, TaskCancelled:
			if !plan.ByID[dep].ContinueOnError {
				return "dependency " + dep + " did not complete successfully", true
			}
		}
	}
	return "", false
}

// runTask resolves t's arguments, invokes its tool with the per-task
// timeout applied (if any), and classifies the outcome into a terminal
// TaskResult. It never panics and never returns an error itself;
// failure is represented in the returned TaskResult.
func (e *Engine) runTask(ctx context.Context, workflowID string, t registry.WorkflowTask, res *resolver, call CallTool) TaskResult {
	start := time.Now()
	e.auditor.LogTaskStarted(ctx, workflowID, t.TaskID, t.Tool)

	result := TaskResult{TaskID: t.TaskID, Tool: t.Tool, StartedAt: start}

	args, err := res.resolveArguments(t.Arguments)
	if err != nil {
		result.Status = TaskFailed
		result.Error = err.Error()
		result.FinishedAt = time.Now()
		e.finishTask(ctx, workflowID, result, err)
		return result
	}

	taskCtx := ctx
	var cancel context.CancelFunc
	if t.TimeoutMS > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, time.Duration(t.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	data, err := call(taskCtx, t.Tool, args)
	result.FinishedAt = time.Now()
	if err != nil {
		switch {
		case taskCtx.Err() == context.DeadlineExceeded:
			result.Status = TaskTimeout
			err = splunkerrors.NewTimeoutError("task exceeded its timeout", err)
		case ctx.Err() == context.Canceled:
			result.Status = TaskCancelled
			err = splunkerrors.NewCancelledError("workflow run was cancelled", err)
		default:
			result.Status = TaskFailed
		}
		result.Error = err.Error()
		e.finishTask(ctx, workflowID, result, err)
		e.metrics.observeTask(t.Tool, string(result.Status), result.FinishedAt.Sub(start))
		return result
	}

	result.Status = TaskOK
	result.Data = data
	e.finishTask(ctx, workflowID, result, nil)
	e.metrics.observeTask(t.Tool, string(result.Status), result.FinishedAt.Sub(start))
	return result
}

func (e *Engine) finishTask(ctx context.Context, workflowID string, result TaskResult, err error) {
	e.auditor.LogTaskFinished(ctx, workflowID, result.TaskID, string(result.Status), result.FinishedAt.Sub(result.StartedAt), err)
}

// orderedResults flattens plan's phases back into a single
// dependency-ordered slice of results, including skipped/cancelled
// tasks, so a summary always lists every task exactly once.
func orderedResults(plan *Plan, results map[string]TaskResult) []TaskResult {
	ordered := make([]TaskResult, 0, len(plan.ByID))
	for _, phase := range plan.Phases {
		for _, t := range phase {
			if r, ok := results[t.TaskID]; ok {
				ordered = append(ordered, r)
			}
		}
	}
	return ordered
}

func runStatus(cancelled bool, tasks []TaskResult) RunStatus {
	if cancelled {
		return RunCancelled
	}
	for _, t := range tasks {
		if t.Status == TaskFailed || t.Status == TaskTimeout {
			return RunFailed
		}
	}
	return RunOK
}
