// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoConvergence    = errors.New("solver did not converge")
	ErrUnknownStrategy  = errors.New("unknown strategy")
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrDatabaseError    = errors.New("database error")
	ErrInsufficientData = errors.New("insufficient data")
)

// ValidationError represents a validation error on a single input field.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// SolverError reports a numerical routine that stopped without an answer.
type SolverError struct {
	Solver     string
	Iterations int
	Residual   float64
	Err        error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver error [%s] after %d iterations (residual %.3g): %v",
		e.Solver, e.Iterations, e.Residual, e.Err)
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

// NewSolverError creates a new SolverError.
func NewSolverError(solver string, iterations int, residual float64, err error) *SolverError {
	return &SolverError{
		Solver:     solver,
		Iterations: iterations,
		Residual:   residual,
		Err:        err,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Source   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Source, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, source, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Source:   source,
		Message:  message,
		Err:      err,
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
