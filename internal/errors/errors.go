package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotFound indicates the requested record does not exist
	NotFound ErrorCode = "NOT_FOUND"
	// InvalidParameter indicates a missing or malformed parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// ConstraintViolation indicates a foreign-key or check constraint failed in the store
	ConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"
	// Conflict indicates the operation would overwrite existing state
	Conflict ErrorCode = "CONFLICT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RetryWith suggests repeating the call with different parameters
	RetryWith FixActionType = "retry-with"
	// CallTool suggests calling another tool first
	CallTool FixActionType = "call-tool"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType          `json:"type"`
	Tool        string                 `json:"tool,omitempty"`
	Params      map[string]interface{} `json:"params,omitempty"`
	Description string                 `json:"description,omitempty"`
}

// OpsError is an error with a stable code, message and optional suggestions.
type OpsError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// NewOpsError creates a new OpsError
func NewOpsError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *OpsError {
	return &OpsError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error returns the message, followed by the cause when there is one.
// Not-found messages are user-facing and carry no cause.
func (e *OpsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *OpsError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *OpsError) WithDetails(details interface{}) *OpsError {
	e.Details = details
	return e
}

// NewResourceNotFoundError reports a missing record, e.g. "Project not found".
func NewResourceNotFoundError(kind string, id string) *OpsError {
	msg := capitalize(kind) + " not found"
	err := NewOpsError(NotFound, msg, nil, nil)
	if id != "" {
		err.Details = map[string]string{"id": id}
	}
	return err
}

// NewInvalidParameterError reports a missing or malformed parameter.
func NewInvalidParameterError(name string, reason string) *OpsError {
	msg := fmt.Sprintf("invalid parameter '%s'", name)
	if reason != "" {
		msg += ": " + reason
	}
	return NewOpsError(InvalidParameter, msg, nil, nil).WithDetails(map[string]string{"parameter": name})
}

// NewConstraintError reports a write rejected by a store constraint.
func NewConstraintError(op string, cause error) *OpsError {
	return NewOpsError(ConstraintViolation, op+" violates a store constraint", cause, nil)
}

// NewConflictError reports a write that would replace an existing file.
func NewConflictError(path string, message string, fixes ...FixAction) *OpsError {
	return NewOpsError(Conflict, message, nil, fixes).WithDetails(map[string]string{"path": path})
}

// NewOperationError wraps an unexpected failure of op.
func NewOperationError(op string, cause error) *OpsError {
	return NewOpsError(InternalError, op+" failed", cause, nil)
}

// As returns the first *OpsError in err's chain.
func As(err error) (*OpsError, bool) {
	var opsErr *OpsError
	if errors.As(err, &opsErr) {
		return opsErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or InternalError when err carries none.
func CodeOf(err error) ErrorCode {
	if opsErr, ok := As(err); ok {
		return opsErr.Code
	}
	return InternalError
}

func capitalize(s string) string {
	if s == "" {
		return "Record"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
