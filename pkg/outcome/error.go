package outcome

import "fmt"

// Error is a classified per-record failure with a kind, an optional reason,
// a human-readable message and an optional wrapped cause.
type Error struct {
	kind       Kind
	reason     Reason
	message    string
	statusCode int
	cause      error
}

// New creates an Error without a cause.
func New(kind Kind, reason Reason, message string) *Error {
	return &Error{kind: kind, reason: reason, message: message}
}

// Wrap creates an Error that wraps a cause for logging/unwrapping.
func Wrap(kind Kind, reason Reason, message string, cause error) *Error {
	return &Error{kind: kind, reason: reason, message: message, cause: cause}
}

// Error implements the error interface. Includes the cause for log output.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the wrapped cause for errors.Is/errors.As chaining.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the outcome classification.
func (e *Error) Kind() Kind { return e.kind }

// Reason returns the refinement of Kind, if any.
func (e *Error) Reason() Reason { return e.reason }

// Message returns the message without the cause.
func (e *Error) Message() string { return e.message }

// StatusCode returns the HTTP status that caused a download failure, or 0.
func (e *Error) StatusCode() int { return e.statusCode }
