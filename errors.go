package toolcall

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
)

// RegistrationError reports a duplicate tool name or an incomplete
// registration call. Raised synchronously; nothing is partially registered.
type RegistrationError struct {
	Reason string
}

func (e *RegistrationError) Error() string {
	return "tool registration failed: " + e.Reason
}

// NotFoundError reports an attempt to unregister a name that is not present
// in the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %q not found in the registry", e.Name)
}

// ValidationError reports an invalid tool definition: a missing tool or
// parameter description, an unsupported parameter shape, or a schema graph
// that cannot be resolved (cycles, excessive nesting).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid tool definition: " + e.Reason
}

// ExecutionError is a recoverable per-call failure: argument normalization,
// schema validation, or a per-call timeout. At the loop boundary it becomes
// an {"error": ...} payload for the model, never an exception. The Reason is
// shown to the model verbatim; keep internals out of it.
type ExecutionError struct {
	Reason string
	Err    error // wrapped cause for errors.Is/errors.As
}

func (e *ExecutionError) Error() string { return e.Reason }

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err belongs to the closed set of failures the
// loop converts into an error payload instead of aborting the turn:
// execution and validation errors, missing/existing/forbidden path
// conditions, and JSON value/type errors. Anything outside this set is fatal.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	var (
		execErr *ExecutionError
		valErr  *ValidationError
		pathErr *fs.PathError
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
		numErr  *strconv.NumError
	)
	switch {
	case errors.As(err, &execErr),
		errors.As(err, &valErr),
		errors.As(err, &pathErr),
		errors.As(err, &typeErr),
		errors.As(err, &synErr),
		errors.As(err, &numErr):
		return true
	}
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrPermission)
}
