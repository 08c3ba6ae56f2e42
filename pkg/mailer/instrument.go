package mailer

import (
	"context"
	"time"

	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/metrics"
	"github.com/itmade/itmade-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// InstrumentedTransport records a span, metrics and a log line per provider call
type InstrumentedTransport struct {
	next Transport
}

// Instrument wraps t with tracing, metrics and logging
func Instrument(t Transport) *InstrumentedTransport {
	return &InstrumentedTransport{next: t}
}

func (i *InstrumentedTransport) Name() string {
	return i.next.Name()
}

func (i *InstrumentedTransport) Configured() bool {
	return i.next.Configured()
}

// Unwrap returns the decorated transport
func (i *InstrumentedTransport) Unwrap() Transport {
	return i.next
}

func (i *InstrumentedTransport) Send(ctx context.Context, msg *Message) error {
	ctx, span := tracing.StartSpan(ctx, "mailer.send",
		attribute.String("mailer.transport", i.next.Name()),
		attribute.String("contact.request_id", msg.RequestID),
	)
	defer span.End()

	start := time.Now()
	err := i.next.Send(ctx, msg)
	duration := metrics.MeasureDuration(start)
	reason := Reason(err)

	metrics.EmailSendDuration.WithLabelValues(i.next.Name(), reason).Observe(duration)
	metrics.EmailSendTotal.WithLabelValues(i.next.Name(), reason).Inc()

	status := "success"
	fields := []zap.Field{zap.String("request_id", msg.RequestID), zap.String("reason", reason)}
	if err != nil {
		status = "error"
		fields = append(fields, zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
	}
	logger.LogAPICall(ctx, i.next.Name(), "send", status, duration, fields...)

	return err
}
