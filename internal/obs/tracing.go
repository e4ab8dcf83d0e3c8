package obs

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Tracer is the tracer every run/rule/error span in this package is
// created from.
var Tracer = otel.Tracer("reactor.engine")

// InitTracing wires the global tracer provider to an OTLP/gRPC exporter,
// defaulting to localhost:4317 (the usual local collector port) when
// REACTOR_OTLP_ENDPOINT is unset. The returned function flushes and
// shuts the provider down.
func InitTracing(ctx context.Context, serviceName, serviceVersion string) (func(context.Context) error, error) {
	endpoint := os.Getenv("REACTOR_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(dialCtx, endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("dial OTLP endpoint %s: %w", endpoint, err)
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithGRPCConn(conn)))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return func(shutdownCtx context.Context) error {
		if err := provider.ForceFlush(shutdownCtx); err != nil {
			return fmt.Errorf("flush spans: %w", err)
		}
		if err := provider.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown provider: %w", err)
		}
		return conn.Close()
	}, nil
}

// InitTracingOrNoop is InitTracing but falls back to a no-op shutdown
// function (tracing disabled) when the collector is unreachable, so a
// demo binary doesn't fail to start just because nothing is listening on
// the OTLP port.
func InitTracingOrNoop(ctx context.Context, serviceName, serviceVersion string) func(context.Context) error {
	shutdown, err := InitTracing(ctx, serviceName, serviceVersion)
	if err != nil {
		Warn(ctx, "tracing disabled, OTLP init failed: %v", err)
		return func(context.Context) error { return nil }
	}
	return shutdown
}
