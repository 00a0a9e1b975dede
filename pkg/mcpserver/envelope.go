// Package mcpserver implements the MCP Surface Binder: it adapts the
// Component Registry to the Model Context Protocol, using
// github.com/mark3labs/mcp-go for the wire protocol itself and
// github.com/go-chi/chi/v5 to mount the streaming HTTP transport.
package mcpserver

import splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"

// Envelope is the single source of truth for success/failure of one
// dispatch. Exactly one of Data or (Code+Message) is populated.
type Envelope struct {
	Status  string         `json:"status"`
	Data    any            `json:"data,omitempty"`
	Meta    *Meta          `json:"meta,omitempty"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Meta carries diagnostics that ride alongside a successful response.
type Meta struct {
	DurationMS      int64             `json:"duration_ms"`
	ClientID        string            `json:"client_id"`
	ConfigSourceMap map[string]string `json:"config_source_map,omitempty"`
}

// Ok builds a success envelope.
func Ok(data any, meta Meta) Envelope {
	return Envelope{Status: "ok", Data: data, Meta: &meta}
}

// Err builds a failure envelope from a typed error. Non-*errors.Error
// values are reported as Internal, since every collaborator in this
// module is expected to return typed errors.
func Err(err error) Envelope {
	typed, ok := splunkerrors.As(err)
	if !ok {
		return Envelope{Status: "error", Code: string(splunkerrors.Internal), Message: err.Error()}
	}
	return Envelope{Status: "error", Code: string(typed.Type), Message: typed.Message, Details: typed.Details}
}
