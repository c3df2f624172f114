package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested incident does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMethodNotAllowed is returned when a route is called with the wrong verb.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrUpstream is returned when an enrichment lookup fails or answers non-200.
	ErrUpstream = errors.New("upstream lookup failed")
	// ErrIngestion is returned when an input batch line cannot be decoded.
	ErrIngestion = errors.New("malformed input line")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalidInput) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UpstreamError records a lookup that returned a non-success status.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned HTTP %d", e.URL, e.StatusCode)
}

// Unwrap makes UpstreamError match ErrUpstream.
func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
