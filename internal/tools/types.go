// Package tools converts a parsed OpenAPI document into the bridge's
// immutable tool registry.
package tools

import "github.com/apibridge/apibridge/internal/apierr"

// Property describes one input field of a tool.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON-Schema-like input descriptor generated for a tool.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Metadata binds a tool back to its HTTP path and method so the invoker can
// reconstruct the call without re-parsing the specification.
type Metadata struct {
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Tags   []string `json:"tags,omitempty"`
}

// Tool is one invokable unit corresponding to a (path, HTTP method) pair.
// Tools are created once per specification load and never mutated.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
	Metadata    Metadata    `json:"metadata"`
}

// SchemaMap renders the input schema as the generic map shape consumed by
// the JSON-Schema validator and the MCP raw-schema tool constructor.
func (t Tool) SchemaMap() map[string]any {
	props := make(map[string]any, len(t.InputSchema.Properties))
	for name, p := range t.InputSchema.Properties {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		props[name] = prop
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(t.InputSchema.Required) > 0 {
		schema["required"] = t.InputSchema.Required
	}
	return schema
}

// ParamType returns the coercion variant for a named input field, defaulting
// to string for unknown names.
func (t Tool) ParamType(name string) apierr.ParamType {
	if p, ok := t.InputSchema.Properties[name]; ok {
		return apierr.ParseParamType(p.Type)
	}
	return apierr.TypeString
}
