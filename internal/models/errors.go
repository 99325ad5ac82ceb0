// internal/models/errors.go
package models

import "fmt"

// ErrorKind is the machine-readable classification of an analysis error.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindProcessing ErrorKind = "processing"
	KindSystem     ErrorKind = "system"
)

// Error is the error type used across the analysis core. Every error carries
// a kind, a human-readable message, and a recovery suggestion. System errors
// additionally keep the internal cause for logging; Error() never exposes it.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Field      string    `json:"field,omitempty"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion"`
	Internal   error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the internal cause for errors.Is/As chains. The cause is
// logged server-side only; user-facing output carries the generic message.
func (e *Error) Unwrap() error {
	return e.Internal
}

// NewValidationError reports an input shape problem, naming the field.
func NewValidationError(field, message, suggestion string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message, Suggestion: suggestion}
}

// NewProcessingError reports a degraded analysis (insufficient data,
// ambiguity beyond the tie-break rules).
func NewProcessingError(message, suggestion string) *Error {
	return &Error{Kind: KindProcessing, Message: message, Suggestion: suggestion}
}

// NewSystemError reports a collaborator failure. The internal error is kept
// for logs; message is the generic user-facing text.
func NewSystemError(message, suggestion string, internal error) *Error {
	return &Error{Kind: KindSystem, Message: message, Suggestion: suggestion, Internal: internal}
}
