package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/itmade/itmade-api/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
)

// BreakerTransport fails fast while the wrapped provider keeps failing
type BreakerTransport struct {
	next Transport
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps t in a circuit breaker named after the transport.
// Rejections and missing configuration do not count as provider failures.
func WithBreaker(t Transport) *BreakerTransport {
	cfg := circuitbreaker.DefaultConfig("mailer_" + t.Name())
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrProviderRejected) || errors.Is(err, ErrNotConfigured)
	}

	return &BreakerTransport{
		next: t,
		cb:   circuitbreaker.NewCircuitBreaker(cfg),
	}
}

func (b *BreakerTransport) Name() string {
	return b.next.Name()
}

func (b *BreakerTransport) Configured() bool {
	return b.next.Configured()
}

// State returns the breaker state (closed, half-open, open)
func (b *BreakerTransport) State() string {
	return circuitbreaker.GetState(b.cb)
}

func (b *BreakerTransport) Send(ctx context.Context, msg *Message) error {
	_, err := circuitbreaker.Execute(b.cb, func() (struct{}, error) {
		return struct{}{}, b.next.Send(ctx, msg)
	})
	if circuitbreaker.IsBreakerError(err) {
		return fmt.Errorf("%s: %w: %w", b.next.Name(), ErrProviderUnavailable,
			circuitbreaker.FormatError("mailer_"+b.next.Name(), err))
	}
	return err
}
