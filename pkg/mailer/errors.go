package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means a credential the provider needs is missing
	ErrNotConfigured = errors.New("transport not configured")

	// ErrProviderRejected means the provider refused the request (bad key, bad template variables)
	ErrProviderRejected = errors.New("provider rejected the message")

	// ErrProviderUnavailable means the provider could not be reached or failed on its side
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// ProviderError describes a non-success HTTP answer from a provider
type ProviderError struct {
	Transport  string
	StatusCode int
	Body       string
	kind       error
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Transport, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Transport, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error {
	return e.kind
}

// NewProviderError classifies a provider status code.
// 4xx answers are rejections except 408 and 429, which are transient.
func NewProviderError(transport string, statusCode int, body string) *ProviderError {
	kind := ErrProviderUnavailable
	if statusCode >= 400 && statusCode < 500 &&
		statusCode != http.StatusRequestTimeout && statusCode != http.StatusTooManyRequests {
		kind = ErrProviderRejected
	}
	return &ProviderError{
		Transport:  transport,
		StatusCode: statusCode,
		Body:       body,
		kind:       kind,
	}
}

// Unavailable wraps a network-level failure of a provider call
func Unavailable(transport string, err error) error {
	return fmt.Errorf("%s: %w: %w", transport, ErrProviderUnavailable, err)
}

// Reason returns a low-cardinality label for err, used in metrics
func Reason(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrProviderRejected):
		return "rejected"
	case errors.Is(err, ErrProviderUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
