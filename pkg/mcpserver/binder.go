package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// Binder wires a Dispatcher's registered components onto an mcp-go
// server: one mcp.Tool/Resource(Template)/Prompt per registry entry,
// each handler closure just re-entering Dispatcher and translating its
// Envelope into the shapes mcp-go expects on the wire.
type Binder struct {
	dispatcher *Dispatcher
	mcpServer  *server.MCPServer
}

// NewBinder constructs the mcp-go server and registers every component
// currently in reg. Call after discovery.Load has populated and frozen
// the registry; components discovered later (hot reload) are not
// retroactively bound.
func NewBinder(name, version string, d *Dispatcher) *Binder {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithPromptCapabilities(true),
	)

	b := &Binder{dispatcher: d, mcpServer: s}
	b.bindTools()
	b.bindResources()
	b.bindPrompts()
	b.bindWorkflows()
	return b
}

// Server returns the underlying mcp-go server, for transports to mount.
func (b *Binder) Server() *server.MCPServer {
	return b.mcpServer
}

func (b *Binder) bindTools() {
	for _, entry := range b.dispatcher.ListTools() {
		entry := entry
		opts := []mcp.ToolOption{mcp.WithDescription(entry.Metadata.Description)}
		for _, p := range entry.Parameters {
			opts = append(opts, toolParameterOption(p))
		}
		tool := mcp.NewTool(entry.Metadata.Name, opts...)

		b.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			inv := invocationFromContext(ctx)
			env := b.dispatcher.CallTool(ctx, inv, entry.Metadata.Name, req.GetArguments())
			return envelopeToToolResult(env), nil
		})
	}
}

func toolParameterOption(p registry.ToolParameter) mcp.ToolOption {
	var propOpts []mcp.PropertyOption
	if p.Description != "" {
		propOpts = append(propOpts, mcp.Description(p.Description))
	}
	if p.Required {
		propOpts = append(propOpts, mcp.Required())
	}

	switch p.Type {
	case "number", "integer":
		return mcp.WithNumber(p.Name, propOpts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, propOpts...)
	case "array":
		return mcp.WithArray(p.Name, propOpts...)
	case "object":
		return mcp.WithObject(p.Name, propOpts...)
	default:
		return mcp.WithString(p.Name, propOpts...)
	}
}

// bindWorkflows exposes every registered workflow as its own MCP tool,
// named run_<workflow_id>, accepting a single optional "context" object
// that overrides the workflow's default_context for this run. This is
// the "Workflow Engine is itself invoked as a tool via E" path: the
// handler re-enters the dispatcher rather than the workflow engine
// directly, so nothing downstream needs to know a workflow is running.
func (b *Binder) bindWorkflows() {
	for _, entry := range b.dispatcher.ListWorkflows() {
		entry := entry
		toolName := "run_" + entry.Metadata.Name
		tool := mcp.NewTool(toolName,
			mcp.WithDescription("Run the "+entry.Metadata.Name+" workflow: "+entry.Metadata.Description),
			mcp.WithObject("context", mcp.Description("Overrides merged over the workflow's default_context")),
		)

		b.mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			inv := invocationFromContext(ctx)
			runContext, _ := req.GetArguments()["context"].(map[string]any)
			env := b.dispatcher.RunWorkflow(ctx, inv, entry.Metadata.Name, runContext)
			return envelopeToToolResult(env), nil
		})
	}
}

func (b *Binder) bindResources() {
	for _, entry := range b.dispatcher.ListResources() {
		entry := entry
		tmpl := mcp.NewResourceTemplate(entry.URIPattern, entry.Metadata.Name,
			mcp.WithTemplateDescription(entry.Metadata.Description),
		)

		b.mcpServer.AddResourceTemplate(tmpl, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			inv := invocationFromContext(ctx)
			env := b.dispatcher.ReadResource(ctx, inv, req.Params.URI)
			return envelopeToResourceContents(req.Params.URI, env), nil
		})
	}
}

func (b *Binder) bindPrompts() {
	for _, entry := range b.dispatcher.ListPrompts() {
		entry := entry
		var args []mcp.PromptOption
		args = append(args, mcp.WithPromptDescription(entry.Metadata.Description))
		if entry.Arguments != nil {
			for _, a := range entry.Arguments() {
				var argOpts []mcp.ArgumentOption
				if a.Description != "" {
					argOpts = append(argOpts, mcp.ArgumentDescription(a.Description))
				}
				if a.Required {
					argOpts = append(argOpts, mcp.RequiredArgument())
				}
				args = append(args, mcp.WithArgument(a.Name, argOpts...))
			}
		}
		prompt := mcp.NewPrompt(entry.Metadata.Name, args...)

		b.mcpServer.AddPrompt(prompt, func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			inv := invocationFromContext(ctx)
			stringArgs := make(map[string]any, len(req.Params.Arguments))
			for k, v := range req.Params.Arguments {
				stringArgs[k] = v
			}
			env := b.dispatcher.GetPrompt(ctx, inv, entry.Metadata.Name, stringArgs)
			return envelopeToPromptResult(entry.Metadata.Description, env), nil
		})
	}
}

// envelopeToToolResult renders an Envelope as mcp-go's tool call result,
// JSON-encoding success payloads and surfacing failures as tool errors
// rather than protocol errors, so Envelope stays the single
// representation of outcome regardless of transport.
func envelopeToToolResult(env Envelope) *mcp.CallToolResult {
	if env.Status != "ok" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s", env.Code, env.Message))
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(payload))
}

func envelopeToResourceContents(uri string, env Envelope) []mcp.ResourceContents {
	if env.Status != "ok" {
		payload, _ := json.Marshal(env)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(payload)},
		}
	}
	payload, err := json.Marshal(env.Data)
	if err != nil {
		payload = []byte(err.Error())
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(payload)},
	}
}

func envelopeToPromptResult(description string, env Envelope) *mcp.GetPromptResult {
	text := env.Message
	if env.Status == "ok" {
		if s, ok := env.Data.(string); ok {
			text = s
		} else if payload, err := json.Marshal(env.Data); err == nil {
			text = string(payload)
		}
	}
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
		},
	}
}

// invocationCtxKeyType is the context key type; invocation values travel
// on the context under invocationCtxKey, set by the transport adapters
// before mcp-go's server dispatches into a tool/resource/prompt handler.
type invocationCtxKeyType struct{}

var invocationCtxKey = invocationCtxKeyType{}

// withInvocation attaches inv to ctx for the handlers above to recover.
func withInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationCtxKey, inv)
}

// invocationFromContext recovers the Invocation a transport attached, or
// falls back to a bare stdio invocation reading the real OS environment.
func invocationFromContext(ctx context.Context) Invocation {
	if inv, ok := ctx.Value(invocationCtxKey).(Invocation); ok {
		return inv
	}
	return Invocation{Transport: config.TransportStdio, Env: config.OSEnvLookup}
}
