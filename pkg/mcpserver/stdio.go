package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
)

// ServeStdio runs b over the line-delimited JSON stdio transport via
// mcp-go's server.ServeStdio. ctx is not passed on to it, so cancelling
// ctx does not stop the server. Every request on
// this transport resolves config from invocation args and
// MCP_SPLUNK_*/SPLUNK_* environment variables only; stdio carries no
// per-request headers, so there is no multi-tenant isolation here by
// design.
func ServeStdio(ctx context.Context, b *Binder) error {
	return server.ServeStdio(b.Server(),
		server.WithStdioContextFunc(func(ctx context.Context) context.Context {
			return withInvocation(ctx, Invocation{
				Transport: config.TransportStdio,
				Env:       config.OSEnvLookup,
			})
		}),
	)
}
