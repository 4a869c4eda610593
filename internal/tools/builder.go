package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/apibridge/apibridge/internal/common"
)

// verbs is the closed set of HTTP methods converted to tools, in the order
// they are visited for each path. Any other path-item key (shared parameter
// blocks and the like) is ignored.
var verbs = []string{"get", "post", "put", "delete", "patch"}

// BuildOptions controls tool generation.
type BuildOptions struct {
	// StrictNames turns duplicate derived tool names into a build error.
	// Otherwise collisions log a warning and the later definition wins.
	StrictNames bool
	Logger      *common.Logger
}

// Build walks the specification's paths and produces one tool per
// recognized (path, verb) pair. It is a pure transform of the document:
// deterministic for a given input, no network or I/O.
func Build(doc *openapi3.T, opts BuildOptions) ([]Tool, error) {
	logger := opts.Logger
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var built []Tool
	index := make(map[string]int)

	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		for _, verb := range verbs {
			op := operationFor(item, verb)
			if op == nil {
				continue
			}

			tool := buildTool(path, verb, item, op)

			if pos, exists := index[tool.Name]; exists {
				if opts.StrictNames {
					return nil, fmt.Errorf("duplicate tool name %q (%s %s collides with %s %s)",
						tool.Name, strings.ToUpper(verb), path,
						strings.ToUpper(built[pos].Metadata.Method), built[pos].Metadata.Path)
				}
				logger.Warn().
					Str("name", tool.Name).
					Str("path", path).
					Str("method", verb).
					Msg("duplicate tool name, later definition wins")
				built[pos] = tool
				continue
			}

			index[tool.Name] = len(built)
			built = append(built, tool)
		}
	}

	return built, nil
}

// buildTool derives one tool from an operation, merging path-level and
// operation-level parameters.
func buildTool(path, verb string, item *openapi3.PathItem, op *openapi3.Operation) Tool {
	tool := Tool{
		Name:        toolName(verb, path, op),
		Description: toolDescription(verb, path, op),
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
		},
		Metadata: Metadata{
			Path:   path,
			Method: verb,
			Tags:   op.Tags,
		},
	}

	params := append(openapi3.Parameters{}, item.Parameters...)
	params = append(params, op.Parameters...)

	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		if p.In != openapi3.ParameterInPath && p.In != openapi3.ParameterInQuery {
			continue
		}
		tool.InputSchema.Properties[p.Name] = Property{
			Type:        schemaType(p.Schema),
			Description: p.Description,
		}
		if p.Required {
			tool.InputSchema.Required = appendUnique(tool.InputSchema.Required, p.Name)
		}
	}

	mergeRequestBody(&tool, op)

	return tool
}

// mergeRequestBody folds the JSON request body's top-level properties into
// the tool's flat input namespace. A body field sharing a name with a
// path/query parameter wins.
func mergeRequestBody(tool *Tool, op *openapi3.Operation) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}
	media := op.RequestBody.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return
	}
	body := media.Schema.Value

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sub := body.Properties[name]
		prop := Property{Type: "string"}
		if sub != nil && sub.Value != nil {
			prop.Type = schemaType(sub)
			prop.Description = sub.Value.Description
		}
		tool.InputSchema.Properties[name] = prop
	}

	for _, name := range body.Required {
		tool.InputSchema.Required = appendUnique(tool.InputSchema.Required, name)
	}
}

// toolName derives a unique name: the operationId when present, else the
// method and path joined with underscores and braces stripped.
func toolName(verb, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	p := strings.ReplaceAll(path, "/", "_")
	p = strings.ReplaceAll(p, "{", "")
	p = strings.ReplaceAll(p, "}", "")
	return verb + p
}

// toolDescription prefers summary, then description, then a synthesized
// "METHOD path" fallback.
func toolDescription(verb, path string, op *openapi3.Operation) string {
	if op.Summary != "" {
		return op.Summary
	}
	if op.Description != "" {
		return op.Description
	}
	return strings.ToUpper(verb) + " " + path
}

// operationFor returns the operation for one of the recognized verbs.
func operationFor(item *openapi3.PathItem, verb string) *openapi3.Operation {
	switch verb {
	case "get":
		return item.Get
	case "post":
		return item.Post
	case "put":
		return item.Put
	case "delete":
		return item.Delete
	case "patch":
		return item.Patch
	}
	return nil
}

// schemaType extracts the primitive type hint from a schema reference,
// defaulting to string.
func schemaType(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return "string"
	}
	types := *ref.Value.Type
	if len(types) == 0 {
		return "string"
	}
	return types[0]
}

func appendUnique(list []string, name string) []string {
	for _, existing := range list {
		if existing == name {
			return list
		}
	}
	return append(list, name)
}
