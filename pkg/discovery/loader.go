package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/logger"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// Categories optionally declares the allowed category values per kind.
// A nil or missing entry falls back to the length-only check.
type Categories map[registry.Kind][]string

// Load walks roots in order, validates every candidate definition file,
// and registers the valid ones into reg. Roots are sorted core-before-
// contrib (ties broken by path) so that within a kind every core entry
// registers before any contrib entry, letting registry.Register's
// core-wins conflict resolution actually apply regardless of the
// lexical ordering of the two root directories. Workflows are processed
// after every tool/resource/prompt root so that a workflow's tool
// references can be checked against an already-populated registry. It
// never aborts on a single bad file; failures accumulate in the
// returned Report.
func Load(roots []Root, reg *registry.Registry, categories Categories) Report {
	report := newReport()

	sorted := make([]Root, len(roots))
	copy(sorted, roots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Origin != sorted[j].Origin {
			return sorted[i].Origin == registry.OriginCore
		}
		return sorted[i].Path < sorted[j].Path
	})

	var workflowRoots []Root
	for _, root := range sorted {
		if root.Kind == registry.KindWorkflow {
			workflowRoots = append(workflowRoots, root)
			continue
		}
		loadRoot(root, reg, categories, report)
	}
	for _, root := range workflowRoots {
		loadRoot(root, reg, categories, report)
	}

	reg.Freeze()
	return *report
}

func loadRoot(root Root, reg *registry.Registry, categories Categories, report *Report) {
	entries, err := os.ReadDir(root.Path)
	if err != nil {
		report.recordFailure(LoadFailure{Path: root.Path, Reason: "reading root: " + err.Error()})
		return
	}

	kind := root.Kind
	for _, de := range entries {
		if de.IsDir() || skipFile(de.Name()) {
			continue
		}
		if !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		report.FilesSeen++
		path := filepath.Join(root.Path, de.Name())

		switch kind {
		case registry.KindTool:
			loadTool(path, root.Origin, categories[registry.KindTool], reg, report)
		case registry.KindResource:
			loadResource(path, root.Origin, categories[registry.KindResource], reg, report)
		case registry.KindPrompt:
			loadPrompt(path, root.Origin, categories[registry.KindPrompt], reg, report)
		case registry.KindWorkflow:
			loadWorkflow(path, root.Origin, categories[registry.KindWorkflow], reg, report)
		}
	}
}

func loadTool(path string, origin registry.Origin, declaredCategories []string, reg *registry.Registry, report *Report) {
	var m toolManifest
	if err := readJSONFile(path, &m); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindTool, Reason: err.Error()})
		return
	}
	if err := validateName(m.Name); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindTool, Reason: err.Error()})
		return
	}
	if err := validateCategory(m.Category, declaredCategories); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindTool, Reason: err.Error()})
		return
	}
	if err := validateToolParameters(m.Parameters); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindTool, Reason: err.Error()})
		return
	}
	ctor, err := lookupToolBuiltin(m.Handler)
	if err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindTool, Reason: err.Error()})
		return
	}

	entry := registry.ComponentEntry{
		Kind: registry.KindTool,
		Metadata: registry.ComponentMetadata{
			Name:           m.Name,
			Description:    m.Description,
			Category:       m.Category,
			Tags:           m.Tags,
			RequiresSplunk: m.RequiresSplunk,
			Origin:         origin,
			SourceLocation: path,
		},
		Parameters: m.Parameters,
		NewTool:    ctor,
	}
	registerOrFail(reg, entry, report, path, registry.KindTool, origin)
}

func loadResource(path string, origin registry.Origin, declaredCategories []string, reg *registry.Registry, report *Report) {
	var m resourceManifest
	if err := readJSONFile(path, &m); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindResource, Reason: err.Error()})
		return
	}
	if err := validateName(m.Name); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindResource, Reason: err.Error()})
		return
	}
	if err := validateCategory(m.Category, declaredCategories); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindResource, Reason: err.Error()})
		return
	}
	pattern := m.URITemplate
	if pattern == "" {
		pattern = m.URI
	}
	if err := validateURIPattern(pattern); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindResource, Reason: err.Error()})
		return
	}
	ctor, err := lookupResourceBuiltin(m.Handler)
	if err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindResource, Reason: err.Error()})
		return
	}

	entry := registry.ComponentEntry{
		Kind: registry.KindResource,
		Metadata: registry.ComponentMetadata{
			Name:           m.Name,
			Description:    m.Description,
			Category:       m.Category,
			Tags:           m.Tags,
			RequiresSplunk: m.RequiresSplunk,
			Origin:         origin,
			SourceLocation: path,
		},
		URIPattern:  pattern,
		NewResource: ctor,
	}
	registerOrFail(reg, entry, report, path, registry.KindResource, origin)
}

func loadPrompt(path string, origin registry.Origin, declaredCategories []string, reg *registry.Registry, report *Report) {
	var m promptManifest
	if err := readJSONFile(path, &m); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindPrompt, Reason: err.Error()})
		return
	}
	if err := validateName(m.Name); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindPrompt, Reason: err.Error()})
		return
	}
	if err := validateCategory(m.Category, declaredCategories); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindPrompt, Reason: err.Error()})
		return
	}
	ctor, err := lookupPromptBuiltin(m.Handler)
	if err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindPrompt, Reason: err.Error()})
		return
	}

	args := m.Arguments
	entry := registry.ComponentEntry{
		Kind: registry.KindPrompt,
		Metadata: registry.ComponentMetadata{
			Name:           m.Name,
			Description:    m.Description,
			Category:       m.Category,
			Tags:           m.Tags,
			RequiresSplunk: m.RequiresSplunk,
			Origin:         origin,
			SourceLocation: path,
		},
		Arguments: func() []registry.PromptArgument { return args },
		NewPrompt: ctor,
	}
	registerOrFail(reg, entry, report, path, registry.KindPrompt, origin)
}

func loadWorkflow(path string, origin registry.Origin, declaredCategories []string, reg *registry.Registry, report *Report) {
	var m workflowManifest
	if err := readJSONFile(path, &m); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindWorkflow, Reason: err.Error()})
		return
	}
	if err := validateName(m.ID); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindWorkflow, Reason: err.Error()})
		return
	}
	if err := validateDAG(m.Tasks); err != nil {
		report.recordFailure(LoadFailure{Path: path, Kind: registry.KindWorkflow, Reason: err.Error()})
		return
	}
	for _, t := range m.Tasks {
		if _, ok := reg.Lookup(registry.KindTool, t.Tool); !ok {
			report.recordFailure(LoadFailure{
				Path: path, Kind: registry.KindWorkflow,
				Reason: "task " + t.TaskID + " references unregistered tool " + t.Tool,
			})
			return
		}
	}

	tasks := make([]registry.WorkflowTask, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		tasks = append(tasks, registry.WorkflowTask{
			TaskID:          t.TaskID,
			Tool:            t.Tool,
			Arguments:       t.Arguments,
			DependsOn:       t.DependsOn,
			ContinueOnError: t.ContinueOnError,
			TimeoutMS:       t.TimeoutMS,
		})
	}

	entry := registry.ComponentEntry{
		Kind: registry.KindWorkflow,
		Metadata: registry.ComponentMetadata{
			Name:           m.ID,
			Description:    m.Description,
			Category:       "workflow",
			Origin:         origin,
			SourceLocation: path,
		},
		Workflow: &registry.WorkflowDefinition{
			ID:             m.ID,
			Version:        m.Version,
			Description:    m.Description,
			DefaultContext: m.DefaultContext,
			Tasks:          tasks,
		},
	}
	registerOrFail(reg, entry, report, path, registry.KindWorkflow, origin)
}

func registerOrFail(reg *registry.Registry, entry registry.ComponentEntry, report *Report, path string, kind registry.Kind, origin registry.Origin) {
	if err := reg.Register(entry); err != nil {
		logger.Warnw("component failed to register", "path", path, "kind", kind, "error", err)
		report.recordFailure(LoadFailure{Path: path, Kind: kind, Reason: err.Error()})
		return
	}

	active, _ := reg.Lookup(kind, entry.Metadata.Name)
	if active.Metadata.SourceLocation != path {
		report.recordWarning(path + ": " + string(kind) + " " + entry.Metadata.Name +
			" lost naming conflict to " + active.Metadata.SourceLocation)
		return
	}
	report.recordLoaded(kind, origin)
}
