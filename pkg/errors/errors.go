// Package errors provides structured error types for aurorus.
//
// This package defines error codes and types that enable:
//   - Consistent handling of planning and execution failures
//   - Machine-readable codes the CLI maps to exit status and messages
//   - Error data (cycle paths, conflicting constraints, dependents) that the
//     user needs to act on
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Planning errors (NOT_FOUND, SOURCE_UNAVAILABLE, CYCLIC_DEPENDENCY,
// VERSION_CONFLICT, IN_USE, NOT_INSTALLED) are raised before any system state
// is touched. Execution errors (BUILD_FAILED, INSTALL_FAILED, REMOVE_FAILED)
// abort only the remaining steps of a plan.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "package %s not found", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing package
//	}
//
//	// Structured errors carry their own code
//	var cycle *errors.CycleError
//	if stderrors.As(err, &cycle) {
//	    fmt.Println(cycle.Path)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Lookup errors
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

	// Resolution errors
	ErrCodeCyclicDependency Code = "CYCLIC_DEPENDENCY"
	ErrCodeVersionConflict  Code = "VERSION_CONFLICT"
	ErrCodeLimitExceeded    Code = "LIMIT_EXCEEDED"

	// Removal planning errors
	ErrCodeInUse        Code = "IN_USE"
	ErrCodeNotInstalled Code = "NOT_INSTALLED"

	// Execution errors
	ErrCodeBuildFailed   Code = "BUILD_FAILED"
	ErrCodeInstallFailed Code = "INSTALL_FAILED"
	ErrCodeRemoveFailed  Code = "REMOVE_FAILED"
	ErrCodeLocked        Code = "REGISTRY_LOCKED"

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

// coded is implemented by the structured error types in this package.
type coded interface {
	error
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the outermost *Error or structured
// error and compares its code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coded
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
