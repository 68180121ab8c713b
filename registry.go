package toolcall

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registry owns the mapping from tool name to ToolDefinition. Lookup is
// exact-name and case-sensitive. The registry guards its own map; it gives no
// guarantee about the window between a loop's lookup and the execution that
// follows, so callers mutating the registry during active turns must
// serialize externally.
type Registry struct {
	mu     sync.Mutex
	tools  map[string]*ToolDefinition
	logger *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		tools:  make(map[string]*ToolDefinition),
		logger: o.logger,
	}
}

// RegisterDefinition adds a ready-made definition as-is. Fails with
// *RegistrationError when the definition is incomplete or its name is
// already taken.
func (r *Registry) RegisterDefinition(def *ToolDefinition) error {
	if def == nil || def.impl == nil || def.name == "" {
		return &RegistrationError{Reason: "a complete tool definition is required"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.name]; exists {
		return &RegistrationError{Reason: fmt.Sprintf("tool %q is already registered", def.name)}
	}
	r.tools[def.name] = def
	r.logger.Info("registered tool", "tool", def.name)
	return nil
}

// Register builds a definition from explicit parts and adds it. The schema
// must already be resolved and sanitized; pass nil for a no-parameter tool.
func (r *Registry) Register(name, description string, impl Implementation, parameters map[string]any) error {
	def, err := NewDefinition(name, description, impl, parameters)
	if err != nil {
		return err
	}
	return r.RegisterDefinition(def)
}

// RegisterFunc introspects fn's argument struct into a parameter schema and
// registers the resulting definition. The whole registration fails if the
// tool or any parameter lacks a description.
func RegisterFunc[T, R any](
	r *Registry,
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
	opts ...SchemaOption,
) error {
	def, err := NewFuncDefinition(name, description, fn, opts...)
	if err != nil {
		return err
	}
	return r.RegisterDefinition(def)
}

// Unregister removes a tool. Fails with *NotFoundError when the name is
// absent.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		return &NotFoundError{Name: name}
	}
	delete(r.tools, name)
	r.logger.Info("unregistered tool", "tool", name)
	return nil
}

// Lookup returns the definition for name, or (nil, false) when absent.
func (r *Registry) Lookup(name string) (*ToolDefinition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	def, ok := r.tools[name]
	return def, ok
}

// Definitions returns all registered definitions sorted by name, for
// deterministic manifest building.
func (r *Registry) Definitions() []*ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]*ToolDefinition, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Implementations returns a read view mapping tool name to callable.
func (r *Registry) Implementations() map[string]Implementation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Implementation, len(r.tools))
	for name, def := range r.tools {
		out[name] = def.impl
	}
	return out
}

// ManifestBuilder builds a provider-specific tool listing from generic
// definitions. Each provider supplies its own implementation; adding a
// provider never touches the Registry or the Loop.
type ManifestBuilder interface {
	BuildManifest(defs []*ToolDefinition) (any, error)
}

// Manifest builds the provider-specific listing of all registered tools.
func (r *Registry) Manifest(b ManifestBuilder) (any, error) {
	return b.BuildManifest(r.Definitions())
}
