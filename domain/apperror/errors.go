package apperror

import (
	"errors"
	"fmt"
)

// AppError is an application-specific error type carrying a stable code
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError with the same code, so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// wraps an error with a code and message
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Error code constants
const (
	CodeNotFound    = "NOT_FOUND"
	CodeForbidden   = "FORBIDDEN"
	CodeUnreachable = "UNREACHABLE"
	CodeStorage     = "STORAGE_ERROR"
	CodeUnavailable = "UNAVAILABLE"
	CodeInvalidArg  = "INVALID_ARGUMENT"
)

var (
	ErrNotFound        = New(CodeNotFound, "not found")
	ErrForbidden       = New(CodeForbidden, "forbidden")
	ErrUnreachable     = New(CodeUnreachable, "remote unreachable")
	ErrStorage         = New(CodeStorage, "storage failure")
	ErrUnavailable     = New(CodeUnavailable, "temporarily unavailable")
	ErrInvalidArgument = New(CodeInvalidArg, "invalid argument")
)

// CodeOf returns the code of the first AppError in the chain, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
