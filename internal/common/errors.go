package common

import (
	"errors"
	"fmt"
	"strings"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// Pipeline errors. Only ErrDocumentEmpty is surfaced to callers; the others are
// recovered where they happen and reported as warnings.
var (
	ErrPageFormat     = errors.New("page matches neither tabular nor structured shape")
	ErrFieldCoercion  = errors.New("field is not a number")
	ErrDocumentEmpty  = errors.New("no usable pages")
	ErrRowPersistence = errors.New("row upsert failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// PageFormatError is raised when one page fragment cannot be turned into rows.
type PageFormatError struct {
	Page   int
	Source string
	Cause  error
}

func (e *PageFormatError) Error() string {
	return fmt.Sprintf("page %d (%s): %v", e.Page, e.Source, e.Cause)
}

func (e *PageFormatError) Unwrap() []error { return []error{ErrPageFormat, e.Cause} }

// FieldCoercionError records a numeric cell that was nulled.
type FieldCoercionError struct {
	Page   int
	Row    int
	Column string
	Value  string
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("page %d row %d: column %s: %q is not a number", e.Page, e.Row, e.Column, e.Value)
}

func (e *FieldCoercionError) Unwrap() error { return ErrFieldCoercion }

// RowPersistenceError carries the composite key of a row whose upsert failed.
type RowPersistenceError struct {
	Key   []string
	Cause error
}

func (e *RowPersistenceError) Error() string {
	return fmt.Sprintf("upsert (%s): %v", strings.Join(e.Key, ", "), e.Cause)
}

func (e *RowPersistenceError) Unwrap() []error { return []error{ErrRowPersistence, e.Cause} }
