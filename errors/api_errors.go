package errors

import (
	"fmt"
	"net/http"
)

// APIError is the standardized error body returned by the HTTP layer.
// Status is the HTTP status the error maps to and is not serialized.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes returned in the "error" field.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeServerError  = "server_error"
)

// Common error constructors
func NewBadRequest(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}
}

func NewUnauthorized(message string) *APIError {
	return &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewNotFound(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewConflict(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

func NewServerError(message string) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeServerError,
		Message: message,
	}
}
