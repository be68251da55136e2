// Package errors provides application-level error types and utilities.
// Beyond the usual HTTP-facing classes it defines the pipeline classes the
// payment-fulfillment flow routes on: external dependency failures are
// retryable, timeouts trigger the fulfillment recovery check, and
// reconciliation ambiguity marks a degraded-rate wallet credit.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeInternal       ErrorType = "internal_error"
	ErrorTypeBadRequest     ErrorType = "bad_request"
	ErrorTypeExternal       ErrorType = "external_dependency"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeReconciliation ErrorType = "reconciliation_ambiguity"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newAppError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Code: code, Details: detail}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details...)
}

// NewExternalError creates an error for an unreachable or failing external
// dependency (registrar, DNS provider, payment gateway, forex API).
func NewExternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeExternal, http.StatusBadGateway, message, details...)
}

// NewTimeoutError creates an error for a bounded operation that ran out of budget.
func NewTimeoutError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, details...)
}

// NewReconciliationError marks an amount that was credited with a degraded
// exchange rate and needs manual review.
func NewReconciliationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeReconciliation, http.StatusInternalServerError, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool { return isType(err, ErrorTypeConflict) }

// IsExternalDependencyError checks if the error is an external dependency error
func IsExternalDependencyError(err error) bool { return isType(err, ErrorTypeExternal) }

// IsTimeoutError checks if the error is a timeout error
func IsTimeoutError(err error) bool { return isType(err, ErrorTypeTimeout) }

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// PostgreSQL / SQLite unique violation
	if strings.Contains(errStr, "unique constraint") || strings.Contains(errStr, "UNIQUE constraint") {
		return true
	}
	return false
}
