// Package alerting reports operator-actionable failures to Sentry.
// Without a DSN every call is a no-op.
package alerting

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/pkg/logger"
	"go.uber.org/zap"
)

var enabled atomic.Bool

// Init configures the Sentry client and returns a flush function for shutdown
func Init(cfg config.SentryConfig, environment, release string) (func(), error) {
	return initWithOptions(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: environment,
		Release:     release,
	})
}

func initWithOptions(opts sentry.ClientOptions) (func(), error) {
	if opts.Dsn == "" {
		enabled.Store(false)
		logger.Info("Alerting disabled: SENTRY_DSN not set")
		return func() {}, nil
	}

	if err := sentry.Init(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	enabled.Store(true)

	logger.Info("Sentry alerting initialized", zap.String("environment", opts.Environment))

	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

// Enabled reports whether events are forwarded
func Enabled() bool {
	return enabled.Load()
}

// CaptureError sends err with tags; trace ids from ctx are attached when present
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if err == nil || !Enabled() {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if ctx != nil {
			if id, ok := ctx.Value(requestIDKey{}).(string); ok {
				scope.SetTag("request_id", id)
			}
		}
		hub.CaptureException(err)
	})
}

type requestIDKey struct{}

// WithRequestID stores the submission id so captured events can be correlated with logs
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
