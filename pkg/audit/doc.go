// Package audit provides structured audit logging for MCP dispatch
// (tool/resource/prompt invocations) and workflow runs.
package audit
