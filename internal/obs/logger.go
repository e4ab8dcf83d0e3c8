// Package obs wires a pkg/reactor.Observer to OpenTelemetry tracing,
// Prometheus metrics and leveled logging, the three pillars a Reactor
// run's telemetry is built from.
package obs

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// LogLevel is a logging verbosity threshold.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var currentLogLevel = LogLevelInfo

func init() {
	if os.Getenv("REACTOR_DEBUG") != "" {
		currentLogLevel = LogLevelDebug
	}
}

// Debug logs a debug-level message, emitted only when REACTOR_DEBUG is set.
func Debug(ctx context.Context, format string, args ...any) {
	if currentLogLevel <= LogLevelDebug {
		logWithContext(ctx, "DEBUG", format, args...)
	}
}

// Info logs an info-level message.
func Info(ctx context.Context, format string, args ...any) {
	if currentLogLevel <= LogLevelInfo {
		logWithContext(ctx, "INFO", format, args...)
	}
}

// Warn logs a warn-level message.
func Warn(ctx context.Context, format string, args ...any) {
	if currentLogLevel <= LogLevelWarn {
		logWithContext(ctx, "WARN", format, args...)
	}
}

// Error logs an error-level message.
func Error(ctx context.Context, format string, args ...any) {
	if currentLogLevel <= LogLevelError {
		logWithContext(ctx, "ERROR", format, args...)
	}
}

func logWithContext(ctx context.Context, level, format string, args ...any) {
	timestamp := time.Now().Format("2006/01/02 15:04:05.000")
	message := fmt.Sprintf(format, args...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		traceID := span.SpanContext().TraceID().String()
		log.Printf("%s [%s] [trace=%s] %s", timestamp, level, traceID[:8], message)
		return
	}
	log.Printf("%s [%s] %s", timestamp, level, message)
}
