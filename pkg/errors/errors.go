package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldViolation describes a single failed validation rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Status  int              `json:"status"`
	Fields  []FieldViolation `json:"fields,omitempty"`
	Reasons []string         `json:"reasons,omitempty"`
	Err     error            `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount     = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrDuplicateCode       = New("DUPLICATE_CODE", http.StatusConflict, "code already in use")
	ErrUserAlreadyAssigned = New("USER_ALREADY_ASSIGNED", http.StatusConflict, "user is already assigned to an active teacher")
	ErrDeleteBlocked       = New("DELETE_BLOCKED", http.StatusConflict, "existing references prevent deletion")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrScopeDenied shares the NOT_FOUND wire shape so callers cannot
	// distinguish a missing row from one belonging to another tenant. It
	// stays a distinct value for code paths and tests.
	ErrScopeDenied = New("NOT_FOUND", http.StatusNotFound, "resource not found")
)

// Validation builds a VALIDATION_ERROR carrying every failed field.
func Validation(message string, fields []FieldViolation) *Error {
	e := Clone(ErrValidation, message)
	e.Fields = fields
	return e
}

// Blocked builds a DELETE_BLOCKED error listing the referencing dependents.
func Blocked(message string, reasons []string) *Error {
	e := Clone(ErrDeleteBlocked, message)
	e.Reasons = reasons
	return e
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err resolves to the given predefined error. Clones keep
// the code of their origin, so comparison is by code.
func Is(err error, target *Error) bool {
	e := FromError(err)
	return e != nil && target != nil && e.Code == target.Code && e.Status == target.Status
}
