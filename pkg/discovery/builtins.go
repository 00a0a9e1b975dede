package discovery

import (
	"fmt"
	"sync"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// ToolBuiltin constructs a fresh ToolHandler instance for one invocation.
type ToolBuiltin func() registry.ToolHandler

// ResourceBuiltin constructs a fresh ResourceHandler instance.
type ResourceBuiltin func() registry.ResourceHandler

// PromptBuiltin constructs a fresh PromptHandler instance.
type PromptBuiltin func() registry.PromptHandler

var builtinsMu sync.RWMutex
var (
	toolBuiltins     = map[string]ToolBuiltin{}
	resourceBuiltins = map[string]ResourceBuiltin{}
	promptBuiltins   = map[string]PromptBuiltin{}
)

// RegisterToolBuiltin binds a manifest "handler" id to a Go
// implementation. Packages under internal/ call this from an init
// function so that importing them for side effects is enough to make
// their tools dischargeable by the loader.
func RegisterToolBuiltin(id string, ctor ToolBuiltin) {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	toolBuiltins[id] = ctor
}

// RegisterResourceBuiltin binds a manifest "handler" id to a resource implementation.
func RegisterResourceBuiltin(id string, ctor ResourceBuiltin) {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	resourceBuiltins[id] = ctor
}

// RegisterPromptBuiltin binds a manifest "handler" id to a prompt implementation.
func RegisterPromptBuiltin(id string, ctor PromptBuiltin) {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	promptBuiltins[id] = ctor
}

func lookupToolBuiltin(id string) (ToolBuiltin, error) {
	builtinsMu.RLock()
	defer builtinsMu.RUnlock()
	ctor, ok := toolBuiltins[id]
	if !ok {
		return nil, fmt.Errorf("no builtin tool handler registered for id %q", id)
	}
	return ctor, nil
}

func lookupResourceBuiltin(id string) (ResourceBuiltin, error) {
	builtinsMu.RLock()
	defer builtinsMu.RUnlock()
	ctor, ok := resourceBuiltins[id]
	if !ok {
		return nil, fmt.Errorf("no builtin resource handler registered for id %q", id)
	}
	return ctor, nil
}

func lookupPromptBuiltin(id string) (PromptBuiltin, error) {
	builtinsMu.RLock()
	defer builtinsMu.RUnlock()
	ctor, ok := promptBuiltins[id]
	if !ok {
		return nil, fmt.Errorf("no builtin prompt handler registered for id %q", id)
	}
	return ctor, nil
}

// resetBuiltinsForTest clears all builtin tables; used only by tests in
// this package to keep them isolated from each other.
func resetBuiltinsForTest() {
	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	toolBuiltins = map[string]ToolBuiltin{}
	resourceBuiltins = map[string]ResourceBuiltin{}
	promptBuiltins = map[string]PromptBuiltin{}
}
