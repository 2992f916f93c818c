// Package errors defines the structured errors returned by the CLI, MCP, and
// web surfaces. Engine operations themselves never fail for expected inputs;
// these errors cover request validation and genuinely unexpected conditions.
package errors

import "fmt"

// ErrorCode represents a Tack error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TackError represents a structured error with code, status, and details.
type TackError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TackError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TackError {
	return &TackError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a path with no active parts.
func NewNotFound(identifier string) *TackError {
	return &TackError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no active parts: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TackError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TackError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TackError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TackError); ok {
		return tErr.Code == code
	}
	return false
}
