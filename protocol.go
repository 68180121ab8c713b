package toolcall

import "context"

// ToolCallRequest is one tool invocation requested by the model, as extracted
// from a provider response by an Adapter. Arguments are opaque at this stage:
// an already-structured map, a JSON-encoded string or []byte, or nil. The
// loop normalizes them before execution.
type ToolCallRequest struct {
	Name      string
	Arguments any
	CallID    string // provider correlation id, echoed on the result
}

// ToolCallResult is the outcome of executing one tool call. Response holds
// exactly one of {"result": value} or {"error": message}. CallID is copied
// from the originating request so concurrent completions cannot cross-wire.
type ToolCallResult struct {
	Name     string
	Response map[string]any
	CallID   string
}

func resultPayload(value any) map[string]any {
	return map[string]any{"result": value}
}

func errorPayload(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// Adapter translates between one provider's native response and message
// shapes and the generic call/result vocabulary the Loop speaks. One
// implementation exists per provider; the Loop never changes.
type Adapter interface {
	// ExtractCalls returns the tool calls encoded in a provider response,
	// or an empty slice when the response is a final answer.
	ExtractCalls(response any) []ToolCallRequest
	// RecordAssistantMessage appends the assistant's response (including its
	// intent to call tools) to the conversation history. The loop always
	// records before sending results, preserving causal order.
	RecordAssistantMessage(response any)
	// BuildResultMessage converts a generic tool result into a
	// provider-specific outgoing message.
	BuildResultMessage(result ToolCallResult) any
	// SendResults sends the batch of result messages to the provider and
	// returns its next response. This is a network round trip.
	SendResults(ctx context.Context, messages []any) (any, error)
}
