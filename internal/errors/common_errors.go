package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeEmptyInput   ErrorType = "EMPTY_INPUT"
	ErrTypeSchema       ErrorType = "SCHEMA"
	ErrTypeDuplicateKey ErrorType = "DUPLICATE_KEY"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Fatal reports whether the error must abort a consolidation run.
func (e *AppError) Fatal() bool {
	switch e.Type {
	case ErrTypeDuplicateKey, ErrTypeSchema:
		return false
	}
	return true
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether any error in err's chain is an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Type == t {
			return true
		}
		return IsType(appErr.Cause, t)
	}
	return false
}

// NewEmptyInputError reports that no report table could be supplied.
func NewEmptyInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, cause)
}

// NewSchemaError reports a source that cannot be reduced to (key, value).
func NewSchemaError(source, message string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil).WithContext("source", source)
}

// NewDuplicateKeyWarning reports a key that occurs more than once in one
// report. Callers log it; it never fails a run.
func NewDuplicateKeyWarning(report int, key string, occurrences int) *AppError {
	return NewAppError(ErrTypeDuplicateKey,
		fmt.Sprintf("key %q appears %d times in report %d, last value wins", key, occurrences, report), nil).
		WithContext("report", report).
		WithContext("key", key)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
