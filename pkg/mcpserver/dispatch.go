package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/audit"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/schema"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/session"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/workflow"
)

// Dispatcher is the single dispatch entry point the MCP transport
// adapters call into. It is stateless beyond the Registry and Pool it
// wraps, so re-entrant calls (a tool invoking another tool through the
// binder, as the Workflow Engine does) are supported.
type Dispatcher struct {
	Registry *registry.Registry
	Pool     *session.Pool
	Workflow *workflow.Engine
}

// Invocation is everything the dispatcher needs about the calling
// transport to resolve a SplunkConfig; it is the mcpserver-facing
// equivalent of pkg/config.Invocation.
type Invocation struct {
	Transport          config.TransportKind
	Headers            http.Header
	TransportSessionID string
	Env                config.EnvLookup
}

func (inv Invocation) toConfigInvocation(args map[string]any) config.Invocation {
	return config.Invocation{
		Transport:          inv.Transport,
		Headers:            inv.Headers,
		Args:               args,
		TransportSessionID: inv.TransportSessionID,
		Env:                inv.Env,
	}
}

// CallTool resolves a registered tool by name, validates its arguments
// against its declared parameters, acquires a Splunk session for the
// resolved config, and invokes the tool's handler.
func (d *Dispatcher) CallTool(ctx context.Context, inv Invocation, name string, args map[string]any) Envelope {
	start := time.Now()

	entry, ok := d.Registry.Lookup(registry.KindTool, name)
	if !ok {
		return Err(splunkerrors.NewNotFoundError(fmt.Sprintf("tool %q is not registered", name), nil))
	}

	if len(entry.Parameters) > 0 {
		compiled, err := schema.Compile(schema.BuildObjectSchema(entry.Parameters))
		if err != nil {
			return Err(splunkerrors.NewInternalError("tool parameter schema failed to compile", err))
		}
		fieldErrs, err := compiled.ValidateArgs(args)
		if err != nil {
			return Err(splunkerrors.NewInternalError("validating tool arguments", err))
		}
		if len(fieldErrs) > 0 {
			details := map[string]any{"fields": fieldErrs}
			return Err(splunkerrors.NewInvalidArgsError("argument validation failed", nil).WithDetails(details))
		}
	}

	result := config.Resolve(inv.toConfigInvocation(args))
	ctx = config.WithIdentity(ctx, result.Identity)

	if entry.Metadata.RequiresSplunk && !result.Usable {
		err := splunkerrors.NewConfigMissingError("this tool requires a usable splunk configuration", nil)
		audit.LogToolCalled(ctx, name, time.Since(start), err)
		return Err(err)
	}

	hc := &registry.HandlerContext{
		Ctx:          ctx,
		RequestID:    uuid.NewString(),
		Identity:     result.Identity,
		SplunkConfig: result.Config,
	}

	if entry.Metadata.RequiresSplunk {
		sess, err := d.Pool.Acquire(ctx, result.Config)
		if err != nil {
			return Err(err)
		}
		defer d.Pool.Release(sess)
		hc.Session = sess
	}

	hc.CallTool = func(subName string, subArgs map[string]any) (any, error) {
		sub := d.CallTool(ctx, inv, subName, subArgs)
		if sub.Status != "ok" {
			return nil, splunkerrors.New(splunkerrors.Type(sub.Code), sub.Message, nil).WithDetails(sub.Details)
		}
		return sub.Data, nil
	}

	handler := entry.NewTool()
	data, err := handler.Execute(hc, args)
	audit.LogToolCalled(ctx, name, time.Since(start), err)
	if err != nil {
		logger.Warnw("tool execution failed", "tool", name, "error", err)
		return Err(err)
	}

	return Ok(data, Meta{
		DurationMS:      time.Since(start).Milliseconds(),
		ClientID:        result.Identity.ID,
		ConfigSourceMap: result.SourceMap,
	})
}

// ReadResource implements the read_resource invocation path: URI
// template binding takes the place of argument validation.
func (d *Dispatcher) ReadResource(ctx context.Context, inv Invocation, uri string) Envelope {
	start := time.Now()

	entries := d.Registry.List(registry.KindResource, registry.Filter{})
	var templates []compiledTemplate
	byPattern := make(map[string]registry.ComponentEntry, len(entries))
	for _, e := range entries {
		t := compileTemplate(e.URIPattern)
		templates = append(templates, t)
		byPattern[e.URIPattern] = e
	}

	best, bindings, ok := matchBest(templates, uri)
	if !ok {
		return Err(splunkerrors.NewNotFoundError(fmt.Sprintf("no resource matches uri %q", uri), nil))
	}
	entry := byPattern[best.pattern]

	result := config.Resolve(inv.toConfigInvocation(nil))
	ctx = config.WithIdentity(ctx, result.Identity)
	if entry.Metadata.RequiresSplunk && !result.Usable {
		err := splunkerrors.NewConfigMissingError("this resource requires a usable splunk configuration", nil)
		audit.LogResourceRead(ctx, uri, time.Since(start), err)
		return Err(err)
	}

	hc := &registry.HandlerContext{
		Ctx:          ctx,
		RequestID:    uuid.NewString(),
		Identity:     result.Identity,
		SplunkConfig: result.Config,
	}
	if entry.Metadata.RequiresSplunk {
		sess, err := d.Pool.Acquire(ctx, result.Config)
		if err != nil {
			return Err(err)
		}
		defer d.Pool.Release(sess)
		hc.Session = sess
	}

	handler := entry.NewResource()
	data, err := handler.Read(hc, bindings)
	audit.LogResourceRead(ctx, uri, time.Since(start), err)
	if err != nil {
		return Err(err)
	}

	return Ok(data, Meta{
		DurationMS: time.Since(start).Milliseconds(),
		ClientID:   result.Identity.ID,
	})
}

// GetPrompt implements the get_prompt invocation path.
func (d *Dispatcher) GetPrompt(ctx context.Context, inv Invocation, name string, args map[string]any) Envelope {
	start := time.Now()

	entry, ok := d.Registry.Lookup(registry.KindPrompt, name)
	if !ok {
		return Err(splunkerrors.NewNotFoundError(fmt.Sprintf("prompt %q is not registered", name), nil))
	}

	result := config.Resolve(inv.toConfigInvocation(args))
	ctx = config.WithIdentity(ctx, result.Identity)
	hc := &registry.HandlerContext{
		Ctx:          ctx,
		RequestID:    uuid.NewString(),
		Identity:     result.Identity,
		SplunkConfig: result.Config,
	}

	handler := entry.NewPrompt()
	rendered, err := handler.Render(hc, args)
	audit.LogPromptRendered(ctx, name, time.Since(start), err)
	if err != nil {
		return Err(err)
	}

	return Ok(rendered, Meta{
		DurationMS: time.Since(start).Milliseconds(),
		ClientID:   result.Identity.ID,
	})
}

// RunWorkflow looks up the named workflow, builds a CallTool hook that
// re-enters CallTool for every child task (so a task sees the same
// requires_splunk/config-resolution/audit path any direct tool call
// does), and hands both to the Workflow Engine.
func (d *Dispatcher) RunWorkflow(ctx context.Context, inv Invocation, name string, runContext map[string]any) Envelope {
	start := time.Now()

	entry, ok := d.Registry.Lookup(registry.KindWorkflow, name)
	if !ok {
		return Err(splunkerrors.NewNotFoundError(fmt.Sprintf("workflow %q is not registered", name), nil))
	}
	if d.Workflow == nil {
		return Err(splunkerrors.NewInternalError("workflow engine is not configured", nil))
	}

	call := func(taskCtx context.Context, tool string, args map[string]any) (any, error) {
		sub := d.CallTool(taskCtx, inv, tool, args)
		if sub.Status != "ok" {
			return nil, splunkerrors.New(splunkerrors.Type(sub.Code), sub.Message, nil).WithDetails(sub.Details)
		}
		return sub.Data, nil
	}

	summary, err := d.Workflow.Run(ctx, entry.Workflow, runContext, call)
	if err != nil {
		return Err(err)
	}

	return Ok(summary, Meta{DurationMS: time.Since(start).Milliseconds()})
}

// ListWorkflows returns registry metadata for every registered workflow.
func (d *Dispatcher) ListWorkflows() []registry.ComponentEntry {
	return d.Registry.List(registry.KindWorkflow, registry.Filter{})
}

// ListTools returns registry metadata for every registered tool.
func (d *Dispatcher) ListTools() []registry.ComponentEntry {
	return d.Registry.List(registry.KindTool, registry.Filter{})
}

// ListResources returns registry metadata for every registered resource.
func (d *Dispatcher) ListResources() []registry.ComponentEntry {
	return d.Registry.List(registry.KindResource, registry.Filter{})
}

// ListPrompts returns registry metadata for every registered prompt.
func (d *Dispatcher) ListPrompts() []registry.ComponentEntry {
	return d.Registry.List(registry.KindPrompt, registry.Filter{})
}
