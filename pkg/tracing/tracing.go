package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/pkg/logger"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/itmade/itmade-api"

var tracer trace.Tracer

// InitTracer initializes the OpenTelemetry tracer provider.
// With no exporter endpoint it returns a no-op shutdown and spans stay non-recording.
func InitTracer(cfg config.ObservabilityConfig, environment string) (func(context.Context) error, error) {
	if cfg.AlloyEndpoint == "" {
		logger.Info("Tracing disabled: O11Y_EXPORTER_ENDPOINT not set")
		return func(context.Context) error { return nil }, nil
	}

	logger.Info("Initializing OpenTelemetry tracer",
		zap.String("service", cfg.ServiceName),
		zap.String("namespace", cfg.ServiceNamespace),
		zap.String("version", cfg.ServiceVersion),
		zap.String("environment", environment),
		zap.String("endpoint", cfg.AlloyEndpoint))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.AlloyEndpoint),
		otlptracehttp.WithInsecure(), // collector runs on the internal network
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceNamespace(cfg.ServiceNamespace),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.ServiceInstanceID(cfg.ServiceInstanceID),
			attribute.String("deployment.environment.name", environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(exporter,
		sdktrace.WithBatchTimeout(2*time.Second),
		sdktrace.WithExportTimeout(5*time.Second),
		sdktrace.WithMaxQueueSize(2048),
		sdktrace.WithMaxExportBatchSize(512),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(bsp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracer = tp.Tracer(cfg.ServiceName)

	logger.Info("OpenTelemetry tracer initialized successfully")

	return tp.Shutdown, nil
}

// Tracer returns the tracer in use, falling back to the global provider
func Tracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return tracer
}

// StartSpan starts a new span with the given name and attributes
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, spanName, trace.WithAttributes(attrs...))
}
