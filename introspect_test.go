package toolcall

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walkTree visits every map node in a schema tree, for structural assertions.
func walkTree(node any, visit func(map[string]any)) {
	switch n := node.(type) {
	case map[string]any:
		visit(n)
		for _, v := range n {
			walkTree(v, visit)
		}
	case []any:
		for _, item := range n {
			walkTree(item, visit)
		}
	}
}

type weatherArgs struct {
	Location string `json:"location" jsonschema:"description=City name"`
	Unit     string `json:"unit,omitempty" jsonschema:"description=Temperature unit"`
}

func TestNewFuncDefinition_SimpleSchema(t *testing.T) {
	def, err := NewFuncDefinition("weather", "Get current weather",
		func(_ context.Context, _ weatherArgs) (string, error) { return "sunny", nil })
	require.NoError(t, err)

	schema := def.Parameters()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	location, ok := props["location"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "City name", location["description"])
	unit, ok := props["unit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Temperature unit", unit["description"])

	// A parameter without a default (no omitempty) is required; one with a
	// default is not.
	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "location")
	assert.NotContains(t, required, "unit")

	walkTree(schema, func(n map[string]any) {
		assert.NotContains(t, n, "$schema")
		assert.NotContains(t, n, "$id")
		assert.NotContains(t, n, "title")
		assert.NotContains(t, n, "$defs")
		assert.NotContains(t, n, "definitions")
	})
}

type shippingAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
}

type orderArgs struct {
	ID      string          `json:"id" jsonschema:"description=Order id"`
	Address shippingAddress `json:"address" jsonschema:"description=Delivery address"`
}

func TestNewFuncDefinition_NestedStructInlined(t *testing.T) {
	def, err := NewFuncDefinition("ship", "Ship an order",
		func(_ context.Context, _ orderArgs) (bool, error) { return true, nil })
	require.NoError(t, err)

	schema := def.Parameters()
	address, ok := schema["properties"].(map[string]any)["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", address["type"])
	assert.Equal(t, false, address["additionalProperties"])
	nestedProps, ok := address["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, nestedProps, "street")
	assert.Contains(t, nestedProps, "city")

	walkTree(schema, func(n map[string]any) {
		assert.NotContains(t, n, "$ref")
		assert.NotContains(t, n, "$defs")
	})
}

func TestNewFuncDefinition_MissingParameterDescription(t *testing.T) {
	type args struct {
		City string `json:"city"`
	}
	_, err := NewFuncDefinition("weather", "Get current weather",
		func(_ context.Context, _ args) (string, error) { return "", nil })
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), `parameter "city"`)
	assert.Contains(t, err.Error(), `tool "weather"`)
}

func TestNewFuncDefinition_MissingToolDescription(t *testing.T) {
	_, err := NewFuncDefinition("weather", "",
		func(_ context.Context, _ weatherArgs) (string, error) { return "", nil })
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "missing a description")
}

type treeNode struct {
	Name  string    `json:"name" jsonschema:"description=Node name"`
	Child *treeNode `json:"child,omitempty" jsonschema:"description=Child node"`
}

func TestNewFuncDefinition_RecursiveStructRejected(t *testing.T) {
	_, err := NewFuncDefinition("tree", "Build a tree",
		func(_ context.Context, _ treeNode) (bool, error) { return true, nil })
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "recursive structure detected")
}

func TestNewFuncDefinition_NonStructArguments(t *testing.T) {
	_, err := NewFuncDefinition("count", "Count things",
		func(_ context.Context, _ int) (int, error) { return 0, nil })
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "struct type")
}

func TestNewFuncDefinition_UnsupportedParameterKind(t *testing.T) {
	type args struct {
		Callback func() `json:"callback"`
	}
	_, err := NewFuncDefinition("bad", "Has a func parameter",
		func(_ context.Context, _ args) (bool, error) { return true, nil })
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), "unsupported kind")
	assert.Contains(t, err.Error(), `"callback"`)
}

func TestNewFuncDefinition_NoParameters(t *testing.T) {
	def, err := NewFuncDefinition("ping", "Health check",
		func(_ context.Context, _ struct{}) (string, error) { return "pong", nil })
	require.NoError(t, err)
	schema := def.Parameters()
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema["type"])
}
