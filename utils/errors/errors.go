package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"msg"`
	Status  int    `json:"errorCode"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an APIError of the same kind, so a sentinel
// matches any instance carrying its code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Extensions is picked up by the GraphQL executor and copied into the error's
// "extensions" member.
func (e *APIError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":      e.Code,
		"errorCode": e.Status,
	}
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

var (
	ErrInvalidInput  = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrValidation    = NewAPIError("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrUnauthorized  = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotAuthorized = NewAPIError("NOT_AUTHORIZED", "Not Authorized", http.StatusUnauthorized)
	ErrNotFound      = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrConflict      = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrStore         = NewAPIError("STORE_ERROR", "Store operation failed", http.StatusInternalServerError)
	ErrInternal      = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

func Validation(message string) *APIError {
	return NewAPIError(ErrValidation.Code, message, ErrValidation.Status)
}

func NotFound(message string) *APIError {
	return NewAPIError(ErrNotFound.Code, message, ErrNotFound.Status)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(ErrUnauthorized.Code, message, ErrUnauthorized.Status)
}

func NotAuthorized(message string) *APIError {
	return NewAPIError(ErrNotAuthorized.Code, message, ErrNotAuthorized.Status)
}

func Conflict(message string) *APIError {
	return NewAPIError(ErrConflict.Code, message, ErrConflict.Status)
}

// Store wraps a persistence failure. Domain faults pass through unchanged.
func Store(err error, message string) *APIError {
	return Wrap(err, ErrStore.Code, message, ErrStore.Status)
}

func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAPIError(code, message, status, details)
}

// As extracts the APIError from err, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := stderrors.As(err, &apiErr)
	return apiErr, ok
}
