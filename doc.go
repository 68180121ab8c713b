// Package toolcall is a provider-agnostic engine for describing, registering,
// and executing tools (functions) that an LLM may invoke mid-conversation.
//
// # Overview
//
// A model response may carry tool-call requests. This package drives the
// call→execute→respond cycle: an Adapter extracts generic ToolCallRequest
// values from a provider response, the Loop resolves each one against a
// Registry, executes them concurrently with per-call timeouts, and hands the
// results back to the Adapter to send, repeating until the model produces a
// response without calls or the iteration budget runs out.
//
// Pipeline: argument struct → introspection (reflection + JSON Schema) →
// reference resolution (cycle check, inlining) → sanitization → ToolDefinition
// → Registry → Loop.Run (normalize, validate, execute, respond).
//
// # Key concepts
//
//   - Self-Correction: recoverable failures (bad arguments, schema violations,
//     timeouts, unknown tools) never abort the turn; they become
//     {"error": ...} payloads the model can react to. Only unclassified
//     errors propagate out of the Loop.
//   - Closed schemas: every object in a generated schema is closed
//     (additionalProperties: false) and free of references, definitions, and
//     metadata, so any provider manifest builder can consume it directly.
//   - Descriptions are mandatory: registration fails unless the tool and every
//     one of its parameters carry a human-readable description.
//
// See ToolDefinition, Registry, Loop, and Adapter for the core contracts.
//
// # Example
//
//	type Args struct {
//	    A int `json:"a" jsonschema:"description=First addend"`
//	    B int `json:"b" jsonschema:"description=Second addend"`
//	}
//	reg := toolcall.NewRegistry()
//	err := toolcall.RegisterFunc(reg, "add", "Add two integers",
//	    func(_ context.Context, args Args) (int, error) { return args.A + args.B, nil })
//	if err != nil { ... }
//	loop := toolcall.NewLoop(reg)
//	final, err := loop.Run(ctx, initialResponse, adapter)
package toolcall
