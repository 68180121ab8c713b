package toolcall

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// argsValidator checks normalized arguments against the tool's parameter
// schema before execution. Compiled once at registration; a failed check is
// recoverable so the model can correct its arguments.
type argsValidator struct {
	schema *jsonschema.Schema
}

// compileArgsValidator compiles a resolved, sanitized schema map. Returns
// (nil, nil) for a nil or empty schema: no-parameter tools skip validation.
func compileArgsValidator(schemaMap map[string]any) (*argsValidator, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tool.json", doc); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("tool.json")
	if err != nil {
		return nil, err
	}
	return &argsValidator{schema: schema}, nil
}

// Validate checks args against the compiled schema. A nil validator accepts
// everything.
func (v *argsValidator) Validate(args map[string]any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return &ExecutionError{Reason: fmt.Sprintf("Argument validation failed: %v", err), Err: err}
	}
	// Round-trip through the validator's own decoder so numbers keep the
	// representation its draft semantics expect.
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &ExecutionError{Reason: fmt.Sprintf("Argument validation failed: %v", err), Err: err}
	}
	if err := v.schema.Validate(instance); err != nil {
		return &ExecutionError{Reason: fmt.Sprintf("Argument validation failed: %v", err), Err: err}
	}
	return nil
}
