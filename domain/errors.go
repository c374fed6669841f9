package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a domain error carrying the same code and message,
// so wrapped sentinels still match with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Unavailable marks a storage failure as transient. Domain errors pass through untouched.
func Unavailable(message string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return err
	}
	return WrapError(ErrCodeUnavailable, message, err)
}

// Common domain errors.
var (
	ErrTaskNotFound        = NewError(ErrCodeNotFound, "task not found")
	ErrGoalNotFound        = NewError(ErrCodeNotFound, "goal not found")
	ErrCategoryNotFound    = NewError(ErrCodeNotFound, "category not found")
	ErrTaskAlreadyRunning  = NewError(ErrCodeConflict, "already running")
	ErrTaskNotRunning      = NewError(ErrCodeConflict, "not running")
	ErrIntervalAlreadyOpen = NewError(ErrCodeConflict, "time entry already open for task")
	ErrIntervalClosed      = NewError(ErrCodeConflict, "time entry already closed")
	ErrTaskBusy            = NewError(ErrCodeConflict, "task is being modified")
	ErrInvalidTransition   = NewError(ErrCodeConflict, "invalid status transition")
	ErrUnknownIcon         = NewError(ErrCodeInvalid, "unknown icon")
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
