// Package registry implements the Component Registry: per-kind mappings
// from logical component name to a ComponentEntry, with core-before-
// contrib registration ordering and freeze-after-discovery semantics.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/config"
	splunkerrors "github.com/hkgnobody/mcp-for-splunk-sub002/pkg/errors"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/session"
)

// Kind identifies which of the four component families an entry belongs to.
type Kind string

// The four kinds of named, invokable units exposed through MCP.
const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
	KindWorkflow Kind = "workflow"
)

// Origin records whether a component shipped with the server (core) or
// was supplied by an operator-installed contrib root. Core always wins
// a naming conflict.
type Origin string

// Recognised origins.
const (
	OriginCore    Origin = "core"
	OriginContrib Origin = "contrib"
)

// ComponentMetadata carries the fields common to every kind.
type ComponentMetadata struct {
	Name           string
	Description    string
	Category       string
	Tags           []string
	RequiresSplunk bool
	Origin         Origin
	SourceLocation string
}

// ToolParameter describes one field of a tool's JSON-schema-shaped
// parameter descriptor.
type ToolParameter struct {
	Name        string
	Type        string
	Required    bool
	Default     any
	Description string
}

// PromptArgument describes one named, described argument a prompt accepts.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// WorkflowTask is one node of a WorkflowDefinition's task DAG.
type WorkflowTask struct {
	TaskID          string
	Tool            string
	Arguments       map[string]any
	DependsOn       []string
	ContinueOnError bool
	TimeoutMS       int
}

// WorkflowDefaultContext carries the operator-facing defaults a workflow
// run starts from (e.g. a default search time window) before any
// per-invocation override is applied.
type WorkflowDefaultContext map[string]any

// WorkflowDefinition is the on-disk shape of a workflow component: a DAG
// of tasks, each ultimately fanning out to a registered tool.
type WorkflowDefinition struct {
	ID             string
	Version        string
	Description    string
	DefaultContext WorkflowDefaultContext
	Tasks          []WorkflowTask
}

// HandlerContext is the explicit, per-invocation state passed into every
// handler: identity, resolved config, logging, and a cancellable
// context — modelled as a value rather than ambient/thread-local state.
// Ctx carries the dispatcher's invocation deadline/cancellation (a
// task's timeout_ms, or a run's cancellation); handlers issuing Splunk
// I/O must pass it through rather than building their own background
// context, or that deadline never reaches the outbound HTTP request.
type HandlerContext struct {
	Ctx          context.Context
	RequestID    string
	Identity     config.ClientIdentity
	SplunkConfig config.SplunkConfig
	Session      *session.Session // borrowed for the duration of the call only; never retained
	CallTool     func(name string, args map[string]any) (any, error)
}

// ToolHandler executes a tool invocation and returns its result data.
type ToolHandler interface {
	Execute(hc *HandlerContext, args map[string]any) (any, error)
}

// ResourceHandler reads a resource, given its URI template bindings.
type ResourceHandler interface {
	Read(hc *HandlerContext, binding map[string]string) (any, error)
}

// PromptHandler renders a prompt template.
type PromptHandler interface {
	Render(hc *HandlerContext, args map[string]any) (string, error)
}

// ComponentEntry is one registered component: its metadata plus a
// constructor yielding a fresh handler instance per invocation, so
// handlers may hold per-call state without contaminating concurrent
// calls. Exactly one of NewTool / NewResource / NewPrompt / Workflow is
// set, matching Kind.
type ComponentEntry struct {
	Kind     Kind
	Metadata ComponentMetadata

	Parameters []ToolParameter
	NewTool    func() ToolHandler

	URIPattern  string
	NewResource func() ResourceHandler

	Arguments func() []PromptArgument
	NewPrompt func() PromptHandler

	Workflow *WorkflowDefinition
}

type key struct {
	kind Kind
	name string
}

// Registry holds the frozen-after-discovery set of ComponentEntries.
type Registry struct {
	mu        sync.RWMutex
	entries   map[key]ComponentEntry
	frozen    bool
	hotReload bool
}

// New constructs an empty, unfrozen Registry.
func New() *Registry {
	return &Registry{entries: make(map[key]ComponentEntry)}
}

// SetHotReload toggles whether Register is permitted after Freeze.
func (r *Registry) SetHotReload(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hotReload = enabled
}

// Freeze closes the registry to further registration, except when hot
// reload is enabled.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Register adds entry to the registry. It fails with Duplicate if an
// entry of the same kind+name already exists from a different source
// location. Re-registering the identical name+kind from the same
// location is idempotent and only logs a warning. Within a kind, core
// entries register before contrib by convention of call order; on a
// genuine core/contrib name conflict, core wins and the contrib entry
// is rejected with a logged warning rather than an error, since
// discovery must not abort on it.
func (r *Registry) Register(entry ComponentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen && !r.hotReload {
		return splunkerrors.NewInternalError(
			fmt.Sprintf("registry is frozen: cannot register %s %q", entry.Kind, entry.Metadata.Name), nil)
	}

	k := key{kind: entry.Kind, name: entry.Metadata.Name}
	existing, exists := r.entries[k]
	if !exists {
		r.entries[k] = entry
		return nil
	}

	if existing.Metadata.SourceLocation == entry.Metadata.SourceLocation {
		logger.Warnw("idempotent re-registration", "kind", entry.Kind, "name", entry.Metadata.Name,
			"source", entry.Metadata.SourceLocation)
		r.entries[k] = entry
		return nil
	}

	if existing.Metadata.Origin == OriginCore && entry.Metadata.Origin == OriginContrib {
		logger.Warnw("contrib component loses naming conflict to core", "kind", entry.Kind,
			"name", entry.Metadata.Name, "core_source", existing.Metadata.SourceLocation,
			"contrib_source", entry.Metadata.SourceLocation)
		return nil
	}

	return splunkerrors.NewDuplicateError(
		fmt.Sprintf("%s %q already registered from %s", entry.Kind, entry.Metadata.Name, existing.Metadata.SourceLocation), nil).
		WithDetails(map[string]any{
			"kind":             string(entry.Kind),
			"name":             entry.Metadata.Name,
			"existing_source":  existing.Metadata.SourceLocation,
			"attempted_source": entry.Metadata.SourceLocation,
		})
}

// Lookup returns the entry registered for kind+name.
func (r *Registry) Lookup(kind Kind, name string) (ComponentEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key{kind: kind, name: name}]
	return entry, ok
}

// Filter selects which entries List returns; an empty Filter field means
// "match everything".
type Filter struct {
	Category string
	Tag      string
}

func (f Filter) matches(m ComponentMetadata) bool {
	if f.Category != "" && f.Category != m.Category {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range m.Tags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List returns entries of kind matching filter, sorted lexically by
// name so repeated listings are stable (the registry is frozen, so this
// also guarantees two successive List calls return identical metadata).
func (r *Registry) List(kind Kind, filter Filter) []ComponentEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ComponentEntry
	for k, entry := range r.entries {
		if k.kind != kind {
			continue
		}
		if !filter.matches(entry.Metadata) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Metadata.Name < out[j].Metadata.Name })
	return out
}

// Count returns the number of registered entries per kind, for
// discovery reports and diagnostics.
func (r *Registry) Count() map[Kind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[Kind]int)
	for k := range r.entries {
		counts[k]++
	}
	return counts
}
