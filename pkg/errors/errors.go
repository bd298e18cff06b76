package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors
var (
	ErrNotFound = &AppError{
		Code:    "NOT_FOUND",
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrAlreadyExists = &AppError{
		Code:    "ALREADY_EXISTS",
		Message: "Resource already exists",
		Status:  http.StatusConflict,
	}

	ErrValidation = &AppError{
		Code:    "VALIDATION_ERROR",
		Message: "Validation failed",
		Status:  http.StatusBadRequest,
	}

	// ErrDependency covers unreachable or misbehaving backing services
	// (store, queue, provider).
	ErrDependency = &AppError{
		Code:    "DEPENDENCY_ERROR",
		Message: "Dependency unavailable",
		Status:  http.StatusBadGateway,
	}

	// ErrConfiguration indicates a deployment defect (unknown provider name,
	// missing credentials) rather than a transient failure.
	ErrConfiguration = &AppError{
		Code:    "CONFIGURATION_ERROR",
		Message: "Invalid configuration",
		Status:  http.StatusInternalServerError,
	}

	ErrInternalServer = &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}
)

func NewError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

func WrapError(err error, code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// IsNotFound reports whether err is (or wraps) a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrNotFound.Code
}

// IsAlreadyExists reports whether err is (or wraps) an ALREADY_EXISTS AppError.
func IsAlreadyExists(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrAlreadyExists.Code
}

// IsValidation reports whether err is (or wraps) a VALIDATION_ERROR AppError.
func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrValidation.Code
}

// IsConfiguration reports whether err is (or wraps) a CONFIGURATION_ERROR AppError.
func IsConfiguration(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrConfiguration.Code
}

// ErrorResponse is a common error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
