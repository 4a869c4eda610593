package tools

import "github.com/apibridge/apibridge/internal/apierr"

// Registry is the immutable in-memory collection of all built tools for the
// process lifetime. It is built once at startup and shared read-only across
// concurrent invocations.
type Registry struct {
	ordered []Tool
	byName  map[string]Tool
}

// NewRegistry indexes the built tools. Later entries with duplicate names
// overwrite earlier ones (the builder has already resolved collisions).
func NewRegistry(built []Tool) *Registry {
	r := &Registry{
		ordered: make([]Tool, len(built)),
		byName:  make(map[string]Tool, len(built)),
	}
	copy(r.ordered, built)
	for _, t := range built {
		r.byName[t.Name] = t
	}
	return r
}

// List returns the tools in build order. The slice is a copy; the tools
// themselves are shared immutable values.
func (r *Registry) List() []Tool {
	out := make([]Tool, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// Lookup resolves a tool by name. An unknown name and a tool with unusable
// metadata are distinguishable error kinds.
func (r *Registry) Lookup(name string) (Tool, *apierr.Error) {
	t, ok := r.byName[name]
	if !ok {
		return Tool{}, apierr.ToolNotFound(name)
	}
	if t.Metadata.Path == "" {
		return Tool{}, apierr.ToolMetadataInvalid(name, "path")
	}
	if t.Metadata.Method == "" {
		return Tool{}, apierr.ToolMetadataInvalid(name, "method")
	}
	return t, nil
}
