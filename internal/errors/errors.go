// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeRulesetSignatureInvalid indicates a ruleset whose detached
	// signature did not verify against its payload. Fatal: the ruleset
	// must never be used for computation.
	TypeRulesetSignatureInvalid Type = "RULESET_SIGNATURE_INVALID"

	// TypeRulesetNotFound indicates a requested ruleset version does not exist
	TypeRulesetNotFound Type = "RULESET_NOT_FOUND"

	// TypeValidation indicates a ruleset document failed structural validation
	TypeValidation Type = "VALIDATION_ERROR"

	// TypeStore indicates a ruleset store access error
	TypeStore Type = "STORE_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInput indicates an input shape error outside the pure compute path
	TypeInput Type = "INPUT_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error (or any error it wraps) is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// RulesetSignatureInvalid creates a signature verification error naming the ruleset
func RulesetSignatureInvalid(rulesetID string) *Error {
	return Newf(TypeRulesetSignatureInvalid, "ruleset signature verification failed: %s", rulesetID).
		WithContext("ruleset_id", rulesetID)
}

// RulesetNotFound creates a not found error for a ruleset version
func RulesetNotFound(rulesetID string) *Error {
	return Newf(TypeRulesetNotFound, "ruleset not found: %s", rulesetID).
		WithContext("ruleset_id", rulesetID)
}

// Validation creates a document validation error
func Validation(message string, cause error) *Error {
	return Wrap(TypeValidation, message, cause)
}

// Store creates a store access error
func Store(message string, cause error) *Error {
	return Wrap(TypeStore, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Input creates an input error
func Input(message string, cause error) *Error {
	return Wrap(TypeInput, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
