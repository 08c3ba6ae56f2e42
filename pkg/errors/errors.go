package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds of the contact pipeline. Every kind is terminal for the request;
// none of them is retried.

var (
	// ErrValidation indicates user-correctable input problems
	ErrValidation = errors.New("validation failed")

	// ErrSpam indicates the submission matched the spam denylist
	ErrSpam = errors.New("content not permitted")

	// ErrCaptcha indicates the captcha token was missing or rejected
	ErrCaptcha = errors.New("captcha verification failed")

	// ErrConfiguration indicates a deployment defect such as missing transport credentials
	ErrConfiguration = errors.New("configuration error")

	// ErrTransport indicates the outbound email provider call failed
	ErrTransport = errors.New("transport failure")

	// ErrInvalidInput indicates a malformed request body
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError carries every violated constraint of a submission
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError wraps a list of validation messages
func NewValidationError(messages []string) error {
	return &ValidationError{Errors: messages}
}

// ConfigurationError creates a configuration error with context
func ConfigurationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrConfiguration)
}

// TransportError wraps a provider failure, keeping the cause reachable via errors.Is
func TransportError(transport string, cause error) error {
	return fmt.Errorf("%s: %w: %w", transport, ErrTransport, cause)
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
}
