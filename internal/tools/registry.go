package tools

import (
	"sort"
	"sync"

	"github.com/nikcli-go/nikcli/internal/corerr"
	"github.com/nikcli-go/nikcli/pkg/models"
)

// Registry is the name-addressed catalog of tools an Executor can invoke.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds t under its definition's name. The name must be unique.
func (r *Registry) Register(t Tool) error {
	name := t.Definition().Name
	if name == "" {
		return corerr.Validation("tool name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return corerr.Validation("tool %q is already registered", name)
	}
	r.tools[name] = t
	return nil
}

// Get returns the tool registered under name, if any.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns every registered tool's definition, sorted by name.
func (r *Registry) List() []models.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Definition())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListByCategory filters List to a single category.
func (r *Registry) ListByCategory(cat models.ToolCategory) []models.ToolDefinition {
	all := r.List()
	out := make([]models.ToolDefinition, 0, len(all))
	for _, d := range all {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}
