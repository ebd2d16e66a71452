// Package errors provides structured error types for the intentgraph engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP adapter
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages ("operation not allowed: ...")
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The engine taxonomy maps onto four families:
//   - INVALID_TREE_STRUCTURE: malformed input tree, fatal at load
//   - UNSUPPORTED_MERGE_OPERATION: type pair outside the decision table,
//     rejected before any mutation
//   - PERSISTENCE_FAILURE: save failed after an optimistic mutation; the
//     graph has already been rolled back when this is returned
//   - EXTRACTION_FAILED: the remote extraction service failed (generic
//     service failure, including timeouts)
//
// STALE_VERSION rejects an operation whose node ids were read from an older
// forest version. Ids are renumbered on every rebuild.
//
// Collision ambiguity is intentionally absent: it is resolved by the drag
// controller and never surfaced.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedMerge, "cannot merge %s into %s", src, dst)
//	if errors.Is(err, errors.ErrCodeUnsupportedMerge) {
//	    // Show the message to the user, graph is unchanged
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, saveErr, "save intent tree")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors (handled locally, never corrupt state)
	ErrCodeInvalidTree        Code = "INVALID_TREE_STRUCTURE"
	ErrCodeUnsupportedMerge   Code = "UNSUPPORTED_MERGE_OPERATION"
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"
	ErrCodeInvalidInput       Code = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeDragInProgress Code = "DRAG_IN_PROGRESS"
	ErrCodeStaleVersion   Code = "STALE_VERSION"

	// Collaborator errors
	ErrCodePersistence Code = "PERSISTENCE_FAILURE"
	ErrCodeExtraction  Code = "EXTRACTION_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsStructural reports whether err is a pre-mutation rejection. Structural
// errors guarantee that no graph state was touched.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidTree, ErrCodeUnsupportedMerge, ErrCodeInvalidInput, ErrCodeNotFound, ErrCodeStaleVersion:
		return true
	}
	return false
}
