package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey struct{}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from context, a no-op logger if absent
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.NewNop()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// With attaches a child logger carrying fields and returns it with the new context.
// The fields only enrich log output; nothing reads tenant or user identity back
// out of the logger.
func With(ctx context.Context, fields ...zap.Field) (context.Context, *zap.Logger) {
	l := FromContext(ctx).With(fields...)
	return WithContext(ctx, l), l
}

// WithRequestID adds the request id to the context logger
func WithRequestID(ctx context.Context, requestID string) (context.Context, *zap.Logger) {
	return With(ctx, zap.String("request_id", requestID))
}

// WithTenantID adds the tenant id to the context logger
func WithTenantID(ctx context.Context, tenantID string) (context.Context, *zap.Logger) {
	return With(ctx, zap.String("tenant_id", tenantID))
}

// WithUserID adds the user id to the context logger
func WithUserID(ctx context.Context, userID string) (context.Context, *zap.Logger) {
	return With(ctx, zap.String("user_id", userID))
}

// WithTraceContext adds trace_id and span_id from the context's span.
// If no valid span exists, returns the logger unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}

// L returns the context logger with trace correlation fields
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
