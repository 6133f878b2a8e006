// Package errors defines the coded error taxonomy for the ingestion
// pipeline. Every stage failure carries a code identifying which class
// of collaborator failed; the HTTP layer maps codes to responses
// without leaking the failed stage to the caller.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific pipeline error class.
type ErrorCode string

const (
	// ErrCodeValidation indicates malformed or schema-violating input,
	// detected before any remote call is made.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeGeneration indicates a completion call failed or returned
	// output that does not conform to the requested schema.
	ErrCodeGeneration ErrorCode = "GENERATION_ERROR"
	// ErrCodeRetrieval indicates a knowledge-store search call failed.
	ErrCodeRetrieval ErrorCode = "RETRIEVAL_ERROR"
	// ErrCodePersistence indicates a knowledge-store write failed.
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	// ErrCodeServiceUnavailable indicates a required collaborator is not
	// configured or cannot be reached at all.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// PipelineError is a structured error for pipeline stage failures.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error.
func Validation(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeValidation, Message: msg}
}

// Generation creates a generation error.
func Generation(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeGeneration, Message: msg, Cause: cause}
}

// Retrieval creates a retrieval error.
func Retrieval(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodeRetrieval, Message: msg, Cause: cause}
}

// Persistence creates a persistence error.
func Persistence(msg string, cause error) *PipelineError {
	return &PipelineError{Code: ErrCodePersistence, Message: msg, Cause: cause}
}

// ServiceUnavailable creates a service unavailable error.
func ServiceUnavailable(msg string) *PipelineError {
	return &PipelineError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// IsCode reports whether err is a PipelineError with the given code,
// searching the wrap chain.
func IsCode(err error, code ErrorCode) bool {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Code == code
	}
	return false
}

// CodeOf extracts the error code from err, returning defaultCode when
// err is not a PipelineError.
func CodeOf(err error, defaultCode ErrorCode) ErrorCode {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return defaultCode
}

// MessageOf extracts the caller-safe message from err: the bare
// PipelineError message, without the code tag or the upstream cause.
// Returns defaultMsg when err is not a PipelineError.
func MessageOf(err error, defaultMsg string) string {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return defaultMsg
}
