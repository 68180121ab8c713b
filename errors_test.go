package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect string
	}{
		{"registration", &RegistrationError{Reason: "tool \"add\" is already registered"},
			"tool registration failed: tool \"add\" is already registered"},
		{"not found", &NotFoundError{Name: "add"},
			"tool \"add\" not found in the registry"},
		{"validation", &ValidationError{Reason: "parameter \"a\" is missing a description"},
			"invalid tool definition: parameter \"a\" is missing a description"},
		{"execution", &ExecutionError{Reason: "Tool execution timed out after 180 seconds."},
			"Tool execution timed out after 180 seconds."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.err.Error())
		})
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &ExecutionError{Reason: "wrapped", Err: inner}
	require.ErrorIs(t, err, inner)
}

func TestIsRecoverable(t *testing.T) {
	_, numErr := strconv.Atoi("not a number")
	require.Error(t, numErr)
	var typeErr error = &json.UnmarshalTypeError{Value: "string", Field: "a"}

	tests := []struct {
		name        string
		err         error
		recoverable bool
	}{
		{"nil", nil, false},
		{"execution error", &ExecutionError{Reason: "x"}, true},
		{"validation error", &ValidationError{Reason: "x"}, true},
		{"wrapped execution error", fmt.Errorf("call: %w", &ExecutionError{Reason: "x"}), true},
		{"not exist", fmt.Errorf("open: %w", fs.ErrNotExist), true},
		{"exists", fs.ErrExist, true},
		{"permission", fs.ErrPermission, true},
		{"path error", &fs.PathError{Op: "open", Path: "/etc/x", Err: fs.ErrNotExist}, true},
		{"json type error", typeErr, true},
		{"json syntax error", &json.SyntaxError{}, true},
		{"strconv error", numErr, true},
		{"plain error", errors.New("database down"), false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
		})
	}
}
