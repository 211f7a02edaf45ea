package errors

import (
	"errors"
	"fmt"
	"time"
)

// Base error types
var (
	ErrTimeout          = errors.New("timeout")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConnectionFailed = errors.New("connection failed")
	ErrMalformedBody    = errors.New("malformed response body")
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeAPI     ErrorType = "api"
	ErrorTypeParse   ErrorType = "parse"
	ErrorTypeInput   ErrorType = "input"
)

// CheckError is a structured error for breach-check operations
type CheckError struct {
	Type       ErrorType
	Op         string // Operation that failed (e.g., "query_range", "read_password")
	Err        error  // Underlying error
	StatusCode int    // HTTP status code if applicable
	Timestamp  time.Time
}

func (e *CheckError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is interface
func (e *CheckError) Is(target error) bool {
	if target == nil {
		return false
	}

	switch target {
	case ErrTimeout, ErrConnectionFailed:
		return e.Type == ErrorTypeNetwork
	case ErrInvalidInput:
		return e.Type == ErrorTypeInput
	case ErrMalformedBody:
		return e.Type == ErrorTypeParse
	}

	return errors.Is(e.Err, target)
}

// NewCheckError creates a new CheckError
func NewCheckError(errorType ErrorType, op string, err error) *CheckError {
	return &CheckError{
		Type:      errorType,
		Op:        op,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// WithStatusCode adds HTTP status code to the error
func (e *CheckError) WithStatusCode(code int) *CheckError {
	e.StatusCode = code
	return e
}

// Helper functions

// WrapNetworkError wraps a connection or timeout failure with context
func WrapNetworkError(op string, err error) error {
	return NewCheckError(ErrorTypeNetwork, op, err)
}

// WrapAPIError wraps a non-success API response with context
func WrapAPIError(op string, err error, statusCode int) error {
	return NewCheckError(ErrorTypeAPI, op, err).WithStatusCode(statusCode)
}

// WrapParseError wraps a malformed-response failure with context
func WrapParseError(op string, err error) error {
	return NewCheckError(ErrorTypeParse, op, err)
}

// WrapInputError wraps a missing or invalid password-source failure with context
func WrapInputError(op string, err error) error {
	return NewCheckError(ErrorTypeInput, op, err)
}

// IsInputError checks if an error originated from the password source
func IsInputError(err error) bool {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Type == ErrorTypeInput
	}
	return errors.Is(err, ErrInvalidInput)
}

// APIStatusCode extracts the HTTP status code from an API error, if any
func APIStatusCode(err error) (int, bool) {
	var checkErr *CheckError
	if errors.As(err, &checkErr) && checkErr.Type == ErrorTypeAPI {
		return checkErr.StatusCode, true
	}
	return 0, false
}
