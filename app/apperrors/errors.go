package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of error for API consumers.
type Code string

const (
	CodeInvalidRequest   Code = "INVALID_REQUEST"   // 400
	CodeEmptyRange       Code = "EMPTY_RANGE"       // 400
	CodeNotFound         Code = "NOT_FOUND"         // 404
	CodeGenerationFailed Code = "GENERATION_FAILED" // 500
	CodeInternal         Code = "INTERNAL"          // 500
)

// Error carries an error code and the HTTP status it maps to.
type Error struct {
	Code    Code
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for malformed input.
func NewInvalidRequest(msg string) *Error {
	return &Error{
		Code:    CodeInvalidRequest,
		Status:  http.StatusBadRequest,
		Message: msg,
	}
}

// NewEmptyRange creates a 400 error for a digest range with no tabs.
func NewEmptyRange() *Error {
	return &Error{
		Code:    CodeEmptyRange,
		Status:  http.StatusBadRequest,
		Message: "No tabs found in the specified date range",
	}
}

// NewNotFound creates a 404 error for an absent or unowned record.
func NewNotFound(kind, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
	}
}

// NewGenerationFailed creates a 500 error for a failed model call.
func NewGenerationFailed(err error) *Error {
	return &Error{
		Code:    CodeGenerationFailed,
		Status:  http.StatusInternalServerError,
		Message: "generation call failed",
		Err:     err,
	}
}

// NewInternal creates a 500 error wrapping an unexpected failure.
func NewInternal(msg string, err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: msg,
		Err:     err,
	}
}

// FromError extracts an *Error from err, or wraps err as an internal error.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("unexpected error", err)
}
