package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrPasswordRequired is returned by New when no credential was supplied.
	ErrPasswordRequired = errors.New("password is required")

	// ErrInvalidEndpoint is returned when an endpoint URL cannot be parsed.
	ErrInvalidEndpoint = errors.New("invalid endpoint URL")
)

// APIError represents a failed YUDL API exchange with additional context.
type APIError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("YUDL %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("YUDL %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}
