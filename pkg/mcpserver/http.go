package mcpserver

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
)

// sessionIDHeader is the header the streaming HTTP transport uses to
// correlate requests belonging to the same MCP session, and is also
// treated as the per-invocation ClientIdentity's transport session id.
const sessionIDHeader = "Mcp-Session-Id"

// Mount attaches the streaming HTTP MCP transport to r at path, wiring
// each request's X-Splunk-* headers and Mcp-Session-Id into the
// Invocation the dispatch layer resolves config from.
func Mount(r chi.Router, path string, b *Binder) {
	httpServer := server.NewStreamableHTTPServer(b.Server(),
		server.WithHTTPContextFunc(func(ctx context.Context, req *http.Request) context.Context {
			return withInvocation(ctx, Invocation{
				Transport:          config.TransportHTTP,
				Headers:            req.Header,
				TransportSessionID: req.Header.Get(sessionIDHeader),
				Env:                config.OSEnvLookup,
			})
		}),
	)

	r.Handle(path, httpServer)
	r.Handle(path+"/*", httpServer)
	logger.Infow("mounted streaming http mcp transport", "path", path)
}
