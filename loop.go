package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxIterations = 5
	defaultToolTimeout   = 180 * time.Second
)

// Loop drives the call→execute→respond cycle for one conversational turn.
// It is provider-agnostic: all provider knowledge lives in the Adapter.
type Loop struct {
	registry      *Registry
	maxIterations int
	toolTimeout   time.Duration
	argErrFormat  func(toolName string, err error) string
	onBefore      func(context.Context, ToolCallRequest)
	onAfter       func(context.Context, ToolCallRequest, ToolCallResult, time.Duration)
	logger        *slog.Logger
}

// NewLoop creates a Loop bound to a registry. A nil registry is allowed;
// every call then resolves to a tool-not-found error payload.
func NewLoop(registry *Registry, opts ...LoopOption) *Loop {
	o := loopOptions{
		maxIterations: defaultMaxIterations,
		toolTimeout:   defaultToolTimeout,
		argErrFormat:  defaultArgumentError,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loop{
		registry:      registry,
		maxIterations: o.maxIterations,
		toolTimeout:   o.toolTimeout,
		argErrFormat:  o.argErrFormat,
		onBefore:      o.onBefore,
		onAfter:       o.onAfter,
		logger:        o.logger,
	}
}

// Run executes tool calls until the model produces a response without calls
// or the iteration budget is exhausted. The budget case is not an error: the
// last response is returned unmodified, possibly still carrying call intents,
// and callers needing to distinguish "answered" from "capped" must inspect
// it. Recoverable per-call failures become error payloads; anything outside
// that set aborts the turn with a non-nil error.
func (l *Loop) Run(ctx context.Context, initial any, adapter Adapter) (any, error) {
	current := initial
	for i := 0; i < l.maxIterations; i++ {
		calls := adapter.ExtractCalls(current)
		if len(calls) == 0 {
			l.logger.Debug("no tool calls in response, loop finished")
			adapter.RecordAssistantMessage(current)
			return current, nil
		}

		l.logger.Info("processing tool calls",
			"iteration", i+1, "max_iterations", l.maxIterations, "calls", len(calls))
		// The assistant's intent to call tools goes into history strictly
		// before the corresponding results are sent back.
		adapter.RecordAssistantMessage(current)

		results, err := l.dispatch(ctx, calls)
		if err != nil {
			return nil, err
		}

		messages := make([]any, len(results))
		for j, result := range results {
			messages[j] = adapter.BuildResultMessage(result)
		}
		next, err := adapter.SendResults(ctx, messages)
		if err != nil {
			return nil, err
		}
		current = next
	}
	l.logger.Warn("max tool-call iterations reached, stopping", "max_iterations", l.maxIterations)
	return current, nil
}

// dispatch executes a batch of calls concurrently. Results keep request
// order; correctness relies only on the correlation ids they carry. The
// first fatal error wins and aborts the batch; recoverable failures are
// already folded into their result payloads by handleCall.
func (l *Loop) dispatch(ctx context.Context, calls []ToolCallRequest) ([]ToolCallResult, error) {
	results := make([]ToolCallResult, len(calls))

	var firstErr error
	var firstErrMu sync.Mutex
	setFirstErr := func(err error) {
		firstErrMu.Lock()
		defer firstErrMu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	var wg sync.WaitGroup
	for i, call := range calls {
		i, call := i, call
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := l.handleCall(ctx, call)
			if err != nil {
				setFirstErr(err)
				return
			}
			results[i] = result
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// handleCall resolves, normalizes, validates, and executes one call. A
// non-nil error is fatal for the whole turn; everything recoverable comes
// back as a result with an error payload.
func (l *Loop) handleCall(ctx context.Context, call ToolCallRequest) (result ToolCallResult, err error) {
	l.logger.Debug("handling tool call", "tool", call.Name, "call_id", call.CallID)
	if l.onBefore != nil {
		l.onBefore(ctx, call)
	}
	start := time.Now()
	defer func() {
		if l.onAfter != nil {
			l.onAfter(ctx, call, result, time.Since(start))
		}
	}()

	var def *ToolDefinition
	if l.registry != nil {
		def, _ = l.registry.Lookup(call.Name)
	}
	if def == nil {
		msg := fmt.Sprintf("Tool '%s' not found in registry.", call.Name)
		l.logger.Warn("tool not found", "tool", call.Name)
		return ToolCallResult{Name: call.Name, Response: errorPayload(msg), CallID: call.CallID}, nil
	}

	args, err := l.normalizeArguments(call.Name, call.Arguments)
	if err != nil {
		l.logger.Warn("argument normalization failed", "tool", call.Name, "error", err)
		return ToolCallResult{Name: call.Name, Response: errorPayload(err.Error()), CallID: call.CallID}, nil
	}

	if err := def.validator.Validate(args); err != nil {
		l.logger.Warn("argument validation failed", "tool", call.Name, "error", err)
		return ToolCallResult{Name: call.Name, Response: errorPayload(err.Error()), CallID: call.CallID}, nil
	}

	value, err := l.invoke(ctx, def.impl, args)
	if err != nil {
		if IsRecoverable(err) {
			l.logger.Warn("recoverable tool error", "tool", call.Name, "error", err)
			return ToolCallResult{Name: call.Name, Response: errorPayload(err.Error()), CallID: call.CallID}, nil
		}
		return ToolCallResult{}, err
	}
	l.logger.Debug("tool executed", "tool", call.Name)
	return ToolCallResult{Name: call.Name, Response: resultPayload(value), CallID: call.CallID}, nil
}

// invoke runs the implementation in its own goroutine so a slow or blocking
// tool cannot stall sibling calls, and enforces the per-call timeout. A
// timeout only fails this call. A panic inside the implementation is
// converted to a fatal error.
func (l *Loop) invoke(ctx context.Context, impl Implementation, args map[string]any) (any, error) {
	callCtx := ctx
	if l.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.toolTimeout)
		defer cancel()
	}

	type outcome struct {
		value any
		err   error
	}
	// Buffered so the goroutine can finish after a timeout without leaking.
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic in tool implementation: %v", p)}
			}
		}()
		value, err := impl(callCtx, args)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			// Caller cancellation, not a per-call timeout.
			return nil, ctx.Err()
		}
		return nil, &ExecutionError{
			Reason: fmt.Sprintf("Tool execution timed out after %g seconds.", l.toolTimeout.Seconds()),
			Err:    context.DeadlineExceeded,
		}
	}
}

var errArgsNotObject = errors.New("function arguments must decode to a JSON object")

// normalizeArguments turns the opaque raw arguments of a request into a
// structured mapping: absent or empty input becomes an empty argument set, an
// already-structured map passes through, textual input is parsed as JSON and
// must yield an object, and anything else is coerced through a JSON
// round-trip. Failures are recoverable.
func (l *Loop) normalizeArguments(toolName string, raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		if v == nil {
			return map[string]any{}, nil
		}
		return v, nil
	case string:
		return l.parseArguments(toolName, []byte(v))
	case []byte:
		return l.parseArguments(toolName, v)
	case json.RawMessage:
		return l.parseArguments(toolName, []byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, &ExecutionError{Reason: l.argErrFormat(toolName, err), Err: err}
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, &ExecutionError{Reason: l.argErrFormat(toolName, errArgsNotObject), Err: err}
		}
		if m == nil {
			return map[string]any{}, nil
		}
		return m, nil
	}
}

func (l *Loop) parseArguments(toolName string, data []byte) (map[string]any, error) {
	if strings.TrimSpace(string(data)) == "" {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &ExecutionError{Reason: l.argErrFormat(toolName, err), Err: err}
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ExecutionError{Reason: l.argErrFormat(toolName, errArgsNotObject), Err: errArgsNotObject}
	}
	return m, nil
}

func defaultArgumentError(toolName string, err error) string {
	return fmt.Sprintf("Failed to parse arguments for tool '%s': %v", toolName, err)
}
