// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound    = errors.New("trade not found")
	ErrTradeClosed      = errors.New("trade already closed")
	ErrTradeNotClosed   = errors.New("trade is not closed")
	ErrInvalidPeriod    = errors.New("invalid reporting period")
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInputValidation  = errors.New("input validation failed")
	ErrNoAPIKey         = errors.New("no API key configured")
	ErrRateLimited      = errors.New("rate limited")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a persistence-layer error.
type StoreError struct {
	Op      string
	Entity  string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error [%s] %s: %s: %v", e.Op, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("store error [%s] %s: %s", e.Op, e.Entity, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		Message: message,
		Err:     err,
	}
}

// InsightError represents an error from the AI commentary collaborator.
type InsightError struct {
	Operation string
	Err       error
}

func (e *InsightError) Error() string {
	return fmt.Sprintf("insight error [%s]: %v", e.Operation, e.Err)
}

func (e *InsightError) Unwrap() error {
	return e.Err
}

// NewInsightError creates a new InsightError.
func NewInsightError(operation string, err error) *InsightError {
	return &InsightError{
		Operation: operation,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
