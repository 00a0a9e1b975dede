// Package errors defines the typed error taxonomy used throughout the
// Splunk MCP server and the wire error codes returned in the MCP envelope.
package errors

import "fmt"

// Type is a stable wire error code, as defined in the MCP envelope spec.
type Type string

// Defined wire error codes.
const (
	NotFound        Type = "NotFound"
	InvalidArgs     Type = "InvalidArgs"
	ConfigMissing   Type = "ConfigMissing"
	AuthFailed      Type = "AuthFailed"
	Unreachable     Type = "Unreachable"
	TLSFailed       Type = "TLSFailed"
	Timeout         Type = "Timeout"
	Cancelled       Type = "Cancelled"
	WorkflowInvalid Type = "WorkflowInvalid"
	ReferenceError  Type = "ReferenceError"
	ExecutionError  Type = "ExecutionError"
	Internal        Type = "Internal"
	Duplicate       Type = "Duplicate"
)

// Error is the common error type returned by every collaborator in this
// module. It carries a wire-stable Type, a human Message, an optional
// underlying Cause, and optional structured Details surfaced verbatim in
// the envelope's `details` field.
type Error struct {
	Type    Type
	Message string
	Cause   error
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is / errors.As to see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured details and returns the receiver for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// New constructs an Error of the given type.
func New(t Type, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

// NewNotFoundError constructs a NotFound error.
func NewNotFoundError(message string, cause error) *Error {
	return New(NotFound, message, cause)
}

// NewInvalidArgsError constructs an InvalidArgs error.
func NewInvalidArgsError(message string, cause error) *Error {
	return New(InvalidArgs, message, cause)
}

// NewConfigMissingError constructs a ConfigMissing error.
func NewConfigMissingError(message string, cause error) *Error {
	return New(ConfigMissing, message, cause)
}

// NewAuthFailedError constructs an AuthFailed error.
func NewAuthFailedError(message string, cause error) *Error {
	return New(AuthFailed, message, cause)
}

// NewUnreachableError constructs an Unreachable error.
func NewUnreachableError(message string, cause error) *Error {
	return New(Unreachable, message, cause)
}

// NewTLSFailedError constructs a TLSFailed error.
func NewTLSFailedError(message string, cause error) *Error {
	return New(TLSFailed, message, cause)
}

// NewTimeoutError constructs a Timeout error.
func NewTimeoutError(message string, cause error) *Error {
	return New(Timeout, message, cause)
}

// NewCancelledError constructs a Cancelled error.
func NewCancelledError(message string, cause error) *Error {
	return New(Cancelled, message, cause)
}

// NewWorkflowInvalidError constructs a WorkflowInvalid error.
func NewWorkflowInvalidError(message string, cause error) *Error {
	return New(WorkflowInvalid, message, cause)
}

// NewReferenceError constructs a ReferenceError error.
func NewReferenceError(message string, cause error) *Error {
	return New(ReferenceError, message, cause)
}

// NewExecutionError constructs an ExecutionError error.
func NewExecutionError(message string, cause error) *Error {
	return New(ExecutionError, message, cause)
}

// NewInternalError constructs an Internal error.
func NewInternalError(message string, cause error) *Error {
	return New(Internal, message, cause)
}

// NewDuplicateError constructs a Duplicate error.
func NewDuplicateError(message string, cause error) *Error {
	return New(Duplicate, message, cause)
}

// As extracts a *Error from err, if present anywhere in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	if stdAs(err, &e) {
		return e, true
	}
	return nil, false
}

// stdAs walks err's single-error Unwrap chain by hand and stores the
// first *Error it finds in target; it does not call the standard
// library's errors.As.
func stdAs(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
