// Package errors provides custom error types for the wikisync system.
// These errors separate transient network conditions from permanent API
// answers and fatal contract breaks, so callers can decide what to retry,
// what to skip, and what must abort the run.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// As is an alias for the standard library errors.As.
var As = errors.As

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// Common sentinel errors for the wikisync system
var (
	// ErrNotFound indicates that a requested resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrNoCandidates indicates that discovery produced an empty working set.
	// This is a clean termination signal, not a fault.
	ErrNoCandidates = errors.New("no candidate wikis found")

	// ErrAborted indicates that the operator aborted the run
	ErrAborted = errors.New("run aborted")

	// ErrRejected indicates that the operator rejected a proposed change
	ErrRejected = errors.New("change rejected")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError represents a definitive "does not exist" answer from the
// remote API (HTTP 404 or 410). It is never retried.
type NotFoundError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource gone (status %d): %s", e.StatusCode, e.URL)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ExhaustedRetriesError represents a request that kept failing transiently
// until the attempt budget ran out.
type ExhaustedRetriesError struct {
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("failed after %d tries (%s): %v", e.Attempts, e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Err
}

// SchemaError represents an API response whose shape is inconsistent with
// the expected expanded contract. It indicates silent data corruption risk
// and must abort the run rather than be retried.
type SchemaError struct {
	WikiID  int
	Field   string
	Message string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema break for wiki %d: field %q: %s", e.WikiID, e.Field, e.Message)
	}
	return fmt.Sprintf("schema break for wiki %d: %s", e.WikiID, e.Message)
}

// QueueResolutionError represents a submission queue entry that could not be
// resolved to a wiki identifier. The queue is a best-effort source, so this
// error is logged and skipped, never fatal.
type QueueResolutionError struct {
	Entry string
	Err   error
}

// Error implements the error interface
func (e *QueueResolutionError) Error() string {
	return fmt.Sprintf("queue entry %q did not resolve: %v", e.Entry, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *QueueResolutionError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx answer from the remote API that is not a
// definitive not-found. Treated as transient by the transport layer.
type APIError struct {
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("API error: %s: %s", e.URL, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// ParseError represents an error when decoding a data format
type ParseError struct {
	Format  string // "json", "yaml", "html"
	Source  string // URL or document name
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// PageError represents a failure reading or writing a document in the
// page store.
type PageError struct {
	Operation string // "read", "write"
	Name      string
	Err       error
}

// Error implements the error interface
func (e *PageError) Error() string {
	return fmt.Sprintf("page %s failed for %q: %v", e.Operation, e.Name, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PageError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PageError) Is(target error) bool {
	return target == ErrNotFound && errors.Is(e.Err, ErrNotFound)
}

// ConfigError represents a configuration problem
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a definitive not-found answer
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsNoCandidates checks if an error is the clean no-candidates stop signal
func IsNoCandidates(err error) bool {
	return errors.Is(err, ErrNoCandidates)
}

// IsAborted checks if an error is an operator abort
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted)
}

// IsSchemaBreak checks if an error is a fatal API contract break
func IsSchemaBreak(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// WrapParse wraps a decode error with format context
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return &ParseError{
		Format:  format,
		Source:  source,
		Message: err.Error(),
		Err:     err,
	}
}

// WrapPage wraps a page store error with operation context
func WrapPage(operation, name string, err error) error {
	if err == nil {
		return nil
	}
	return &PageError{
		Operation: operation,
		Name:      name,
		Err:       err,
	}
}
