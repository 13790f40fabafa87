// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a business failure so the HTTP layer can map it once
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindNotFound           Kind = "not_found"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindUnitNotOffered     Kind = "unit_not_offered"
	KindUnauthorized       Kind = "unauthorized"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindInvalidToken       Kind = "invalid_token"
	KindForbidden          Kind = "forbidden"
	KindInvalidSignature   Kind = "invalid_signature"
	KindEmptyCart          Kind = "empty_cart"
	KindConflict           Kind = "conflict"
	KindGateway            Kind = "gateway_error"
	KindInternal           Kind = "internal_error"
)

// Error is a classified application error
type Error struct {
	Kind    Kind              `json:"kind"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind and message, so wrapped sentinels compare equal
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// StatusCode returns the HTTP status for the error kind
func (e *Error) StatusCode() int {
	return StatusFor(e.Kind)
}

// WithCause returns a copy of e carrying cause
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error with optional field details
func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// NotFound creates a not-found error
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Gateway wraps a failure of an upstream collaborator
func Gateway(message string, cause error) *Error {
	return &Error{Kind: KindGateway, Message: message, cause: cause}
}

// Internal wraps an unexpected failure
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// As extracts the application error from err, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// StatusFor maps an error kind to an HTTP status code
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation, KindInsufficientStock, KindUnitNotOffered,
		KindInvalidSignature, KindEmptyCart, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindInvalidToken, KindForbidden:
		return http.StatusForbidden
	case KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
