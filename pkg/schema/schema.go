// Package schema builds and validates the JSON-schema-shaped parameter
// descriptors attached to tool components, using
// github.com/xeipuuv/gojsonschema for the actual schema compilation and
// argument validation.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hkgnobody/mcp-for-splunk-sub002/pkg/registry"
)

// BuildObjectSchema turns a tool's flat parameter descriptor list into a
// JSON-schema "object" document: one property per parameter, with a
// "required" array listing the required ones.
func BuildObjectSchema(params []registry.ToolParameter) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string

	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// Compiled wraps a parsed JSON schema ready for argument validation.
type Compiled struct {
	schema *gojsonschema.Schema
}

// Compile parses doc as a JSON schema, failing if it does not parse —
// this is the "for tools, parameter schema must parse" check from the
// discovery loader's metadata validation step.
func Compile(doc map[string]any) (*Compiled, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshalling schema document: %w", err)
	}
	loader := gojsonschema.NewBytesLoader(raw)
	parsed, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("parsing parameter schema: %w", err)
	}
	return &Compiled{schema: parsed}, nil
}

// FieldError is one parameter-level validation failure, surfaced in the
// envelope's InvalidArgs details.
type FieldError struct {
	Field  string
	Reason string
}

// ValidateArgs checks args against the compiled schema and returns one
// FieldError per violation, in schema-reported order. An empty result
// means args are valid.
func (c *Compiled) ValidateArgs(args map[string]any) ([]FieldError, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshalling arguments: %w", err)
	}
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("validating arguments: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, FieldError{Field: e.Field(), Reason: e.Description()})
	}
	return errs, nil
}
