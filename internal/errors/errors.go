package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("resource conflict")
	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// FetchError represents a failure to retrieve a feed document
type FetchError struct {
	URL string
	Err error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// ParseError represents a malformed feed document
type ParseError struct {
	URL string
	Err error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.URL, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// StoreError represents a persistence layer failure
type StoreError struct {
	Operation string
	Err       error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Operation, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// SendError represents a notification delivery failure
type SendError struct {
	Channel   string
	Recipient string
	Err       error
}

func (e SendError) Error() string {
	return fmt.Sprintf("send via %s to %s: %v", e.Channel, e.Recipient, e.Err)
}

func (e SendError) Unwrap() error {
	return e.Err
}
