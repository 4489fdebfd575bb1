package domainerrors

import "errors"

// Code represents a provisioning error category independent of transport layer.
// These codes describe what went wrong in business terms, not HTTP terms.
type Code string

const (
	// Terminal registration failures.
	CodeDuplicateEmail    Code = "duplicate_email"
	CodeDuplicateIdentity Code = "duplicate_identity"
	CodeValidation        Code = "validation_error"
	CodeUnauthorized      Code = "unauthorized"
	CodeUnknown           Code = "unknown"

	// Transient failures, eligible for bounded retry.
	CodeUserNotFound Code = "user_not_found"
	CodeNetwork      Code = "network_error"
	CodeRPC          Code = "rpc_error"

	// Infrastructure and transport-boundary codes.
	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeInternal   Code = "internal_error"
)

// Retryable reports whether a code names a transient failure. Everything else
// is terminal for the current request and must not consume a retry slot.
func (c Code) Retryable() bool {
	switch c {
	case CodeUserNotFound, CodeNetwork, CodeRPC:
		return true
	default:
		return false
	}
}

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
//
// Hint carries optional structured detail for the caller: the existing member
// number on duplicate errors, or the store's diagnostic message on unknown
// errors. It is never a substitute for Message.
type Error struct {
	Code    Code
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewWithHint creates a domain error carrying structured detail for the caller.
func NewWithHint(code Code, msg, hint string) error {
	return &Error{Code: code, Message: msg, Hint: hint}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code and hint
// are preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Hint: existing.Hint, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf extracts the domain code from an error chain.
// Non-domain errors report CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HintOf extracts the structured detail from an error chain, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// Retryable reports whether the error chain carries a retryable domain code.
// Plain (non-domain) errors are terminal.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Retryable()
	}
	return false
}
