package logward

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Unexported key types so the context keys never collide with another package.
type requestIDKeyType struct{}
type correlationIDKeyType struct{}
type loggerKeyType struct{}

var (
	requestIDKey     = requestIDKeyType{}
	correlationIDKey = correlationIDKeyType{}
	loggerKey        = loggerKeyType{}

	// nullLogger discards everything; returned when no logger is in context.
	nullLogger = &Logger{zl: zerolog.Nop()}
)

// GenerateRequestID creates a unique request ID (a full UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateCorrelationID creates a short correlation ID: the first 8
// characters of a UUID, enough for log readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID, or "" if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithCorrelationID returns a new context carrying the given
// correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext retrieves the correlation ID, or "" if not present.
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithLogger stores a logger in the context, typically a request-scoped
// child created by middleware.
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves the logger from the context. If none is found a
// null logger is returned, so the result is always safe to use.
func LoggerFromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
			return logger
		}
	}
	return nullLogger
}

// Ctx returns a child logger with the context's request and correlation IDs
// attached as fields.
//
//	logger.Ctx(ctx).Info("processing request")
func (l *Logger) Ctx(ctx context.Context) *Logger {
	logCtx := l.zl.With()

	if id := CorrelationIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}

	return l.withZerolog(logCtx.Logger())
}
