package common

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration for configuration-related errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation for validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeClockify for Clockify API errors
	ErrorTypeClockify ErrorType = "clockify"
	// ErrorTypeDevOps for Azure DevOps API errors
	ErrorTypeDevOps ErrorType = "devops"
	// ErrorTypeMatching for matching engine errors
	ErrorTypeMatching ErrorType = "matching"
	// ErrorTypeStorage for storage/persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeReport for report generation errors
	ErrorTypeReport ErrorType = "report"
	// ErrorTypeInternal for internal system errors
	ErrorTypeInternal ErrorType = "internal"
)

// ReconcilerError represents a structured error with context
type ReconcilerError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *ReconcilerError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", e.Type, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *ReconcilerError) WithCause(cause error) *ReconcilerError {
	e.Cause = cause
	return e
}

// NewError creates a new ReconcilerError
func NewError(errorType ErrorType, code, message string) *ReconcilerError {
	return &ReconcilerError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeConfiguration, code, message)
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeValidation, code, message)
}

// NewClockifyError creates a Clockify API error
func NewClockifyError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeClockify, code, message)
}

// NewDevOpsError creates an Azure DevOps API error
func NewDevOpsError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeDevOps, code, message)
}

// NewMatchingError creates a matching engine error
func NewMatchingError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeMatching, code, message)
}

// NewStorageError creates a storage error
func NewStorageError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeStorage, code, message)
}

// NewReportError creates a report generation error
func NewReportError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeReport, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *ReconcilerError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with ReconcilerError context
func WrapError(err error, errorType ErrorType, code, message string) *ReconcilerError {
	return &ReconcilerError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
	}
}
