package toolcall

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
)

// Implementation is the callable behind a tool. It receives the normalized,
// validated arguments and returns the value reported to the model. It must
// honor ctx: the loop cancels it when the per-call timeout expires.
type Implementation func(ctx context.Context, args map[string]any) (any, error)

// ToolDefinition binds a tool name to its description, implementation, and
// resolved parameter schema. Definitions are immutable once created; the
// registry drops them on unregistration.
type ToolDefinition struct {
	name        string
	description string
	impl        Implementation
	parameters  map[string]any
	validator   *argsValidator
}

// NewDefinition builds a ToolDefinition from explicit parts. The schema must
// already be resolved and sanitized (or nil for a no-parameter tool); an
// argument validator is compiled from it. The description is mandatory.
func NewDefinition(name, description string, impl Implementation, parameters map[string]any) (*ToolDefinition, error) {
	if name == "" {
		return nil, &RegistrationError{Reason: "tool name must not be empty"}
	}
	if impl == nil {
		return nil, &RegistrationError{Reason: fmt.Sprintf("tool %q has no implementation", name)}
	}
	if description == "" {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"tool %q is missing a description; models need to know what the tool does", name)}
	}
	validator, err := compileArgsValidator(parameters)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf(
			"tool %q parameter schema does not compile: %v", name, err)}
	}
	return &ToolDefinition{
		name:        name,
		description: description,
		impl:        impl,
		parameters:  parameters,
		validator:   validator,
	}, nil
}

// NewFuncDefinition builds a ToolDefinition from a typed handler. The
// argument struct T is introspected into the parameter schema; incoming
// arguments are validated against it and then decoded into T before fn runs.
func NewFuncDefinition[T, R any](
	name, description string,
	fn func(ctx context.Context, args T) (R, error),
	opts ...SchemaOption,
) (*ToolDefinition, error) {
	if fn == nil {
		return nil, &RegistrationError{Reason: fmt.Sprintf("tool %q has no implementation", name)}
	}
	var o schemaOptions
	for _, opt := range opts {
		opt(&o)
	}
	schema, err := introspectType(reflect.TypeOf(*new(T)), name, o.maxResolveDepth)
	if err != nil {
		return nil, err
	}
	impl := func(ctx context.Context, args map[string]any) (any, error) {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, &ExecutionError{Reason: fmt.Sprintf("Argument validation failed: %v", err), Err: err}
		}
		var typed T
		if err := json.Unmarshal(data, &typed); err != nil {
			return nil, &ExecutionError{Reason: fmt.Sprintf("Argument validation failed: %v", err), Err: err}
		}
		return fn(ctx, typed)
	}
	return NewDefinition(name, description, impl, schema)
}

// Name returns the unique tool name.
func (d *ToolDefinition) Name() string { return d.name }

// Description returns the tool description shown to the model.
func (d *ToolDefinition) Description() string { return d.description }

// Implementation returns the callable behind the tool.
func (d *ToolDefinition) Implementation() Implementation { return d.impl }

// Parameters returns a shallow copy of the parameter schema (top-level keys
// only). Nested maps are shared; callers must not mutate them. Nil for a
// no-parameter tool.
func (d *ToolDefinition) Parameters() map[string]any {
	if d.parameters == nil {
		return nil
	}
	return maps.Clone(d.parameters)
}
