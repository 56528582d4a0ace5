package util

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError marks a precondition failure caught before any I/O.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewNetworkError wraps a transport failure where no HTTP response was
// received at all.
func NewNetworkError(err error) error {
	return &DomainError{
		Code:       "NETWORK_ERROR",
		Message:    "ticket API unreachable",
		HTTPStatus: 0,
		Err:        err,
	}
}

// NewHTTPError carries a failure envelope returned by the ticket API.
// A 404 is promoted to NOT_FOUND so callers can branch on it.
func NewHTTPError(status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("request failed with HTTP %d", status)
	}
	code := "HTTP_ERROR"
	if status == http.StatusNotFound {
		code = "NOT_FOUND"
	}
	return NewDomainError(code, message, status, nil)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsValidation reports whether err is a local precondition failure.
func IsValidation(err error) bool {
	return hasCode(err, "VALIDATION_FAILED")
}

// IsNotFound reports whether err means the ticket does not exist.
func IsNotFound(err error) bool {
	return hasCode(err, "NOT_FOUND")
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	return hasCode(err, "NETWORK_ERROR")
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
