package toolcall

import (
	"context"
	"log/slog"
	"time"
)

// SchemaOption configures schema introspection (e.g. WithMaxResolveDepth).
type SchemaOption func(*schemaOptions)

type schemaOptions struct {
	maxResolveDepth int
}

// WithMaxResolveDepth overrides the maximum reference-inlining depth used
// while resolving a tool's parameter schema. Zero or negative keeps the
// default.
func WithMaxResolveDepth(n int) SchemaOption {
	return func(o *schemaOptions) {
		o.maxResolveDepth = n
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger *slog.Logger
}

// WithRegistryLogger sets the registry's logger. Named with the "Registry"
// prefix to avoid collision with the loop's WithLogger.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// LoopOption configures a Loop (e.g. WithMaxIterations, WithToolTimeout).
type LoopOption func(*loopOptions)

type loopOptions struct {
	maxIterations int
	toolTimeout   time.Duration
	argErrFormat  func(toolName string, err error) string
	onBefore      func(context.Context, ToolCallRequest)
	onAfter       func(context.Context, ToolCallRequest, ToolCallResult, time.Duration)
	logger        *slog.Logger
}

// WithMaxIterations sets the maximum number of tool-call iterations per turn.
// Zero or negative keeps the default of 5.
func WithMaxIterations(n int) LoopOption {
	return func(o *loopOptions) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithToolTimeout sets the per-call execution timeout. Pass 0 to disable the
// timeout entirely.
func WithToolTimeout(d time.Duration) LoopOption {
	return func(o *loopOptions) {
		if d >= 0 {
			o.toolTimeout = d
		}
	}
}

// WithArgumentErrorFormatter overrides the text of argument-parsing error
// payloads sent back to the model.
func WithArgumentErrorFormatter(format func(toolName string, err error) string) LoopOption {
	return func(o *loopOptions) {
		if format != nil {
			o.argErrFormat = format
		}
	}
}

// WithOnBeforeCall sets a hook invoked before each tool call executes.
func WithOnBeforeCall(fn func(context.Context, ToolCallRequest)) LoopOption {
	return func(o *loopOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterCall sets a hook invoked after each tool call settles, with the
// result (zero-valued when the call failed fatally) and the call duration.
func WithOnAfterCall(fn func(context.Context, ToolCallRequest, ToolCallResult, time.Duration)) LoopOption {
	return func(o *loopOptions) {
		o.onAfter = fn
	}
}

// WithLogger sets the loop's logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(o *loopOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
