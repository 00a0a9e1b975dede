package discovery

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/schema"
)

var nameRE = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

const maxCategoryLen = 32

func validateName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("name %q is not a lower-snake identifier", name)
	}
	return nil
}

func validateCategory(category string, declared []string) error {
	if category == "" {
		return fmt.Errorf("category is required")
	}
	if len(declared) == 0 {
		if len(category) > maxCategoryLen {
			return fmt.Errorf("category %q exceeds %d characters", category, maxCategoryLen)
		}
		return nil
	}
	for _, d := range declared {
		if d == category {
			return nil
		}
	}
	return fmt.Errorf("category %q is not in the declared set %v", category, declared)
}

// commonManifest is the JSON shape shared by every kind's definition
// file before kind-specific fields are parsed.
type commonManifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	RequiresSplunk bool     `json:"requires_splunk"`
	Handler        string   `json:"handler"`
}

type toolManifest struct {
	commonManifest
	Parameters []registry.ToolParameter `json:"parameters"`
}

type resourceManifest struct {
	commonManifest
	URI         string `json:"uri"`
	URITemplate string `json:"uri_template"`
}

type promptManifest struct {
	commonManifest
	Arguments []registry.PromptArgument `json:"arguments"`
}

type workflowManifest struct {
	ID             string                          `json:"id"`
	Version        string                          `json:"version"`
	Description    string                          `json:"description"`
	DefaultContext registry.WorkflowDefaultContext `json:"default_context"`
	Tasks          []workflowTaskManifest          `json:"tasks"`
}

type workflowTaskManifest struct {
	TaskID          string         `json:"task_id"`
	Tool            string         `json:"tool"`
	Arguments       map[string]any `json:"arguments"`
	DependsOn       []string       `json:"depends_on"`
	ContinueOnError bool           `json:"continue_on_error"`
	TimeoutMS       int            `json:"timeout_ms"`
}

func skipFile(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// uriTemplateRE matches the templated-segment grammar this server
// accepts: literal path segments and `{name}` placeholders only.
var uriTemplateRE = regexp.MustCompile(`^[A-Za-z0-9_\-/.:]*(\{[a-zA-Z_][a-zA-Z0-9_]*\}[A-Za-z0-9_\-/.:]*)*$`)

func validateURIPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("uri/uri_template is required")
	}
	if !uriTemplateRE.MatchString(pattern) {
		return fmt.Errorf("uri pattern %q is not well-formed", pattern)
	}
	return nil
}

func validateToolParameters(params []registry.ToolParameter) error {
	doc := schema.BuildObjectSchema(params)
	if _, err := schema.Compile(doc); err != nil {
		return fmt.Errorf("parameter schema does not parse: %w", err)
	}
	return nil
}
