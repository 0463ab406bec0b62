package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	customerIDKey contextKey = "customer_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithCustomerID stores the authenticated customer and returns the enriched logger
func WithCustomerID(ctx context.Context, logger *zap.Logger, customerID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, customerIDKey, customerID)
	enriched := logger.With(zap.String("customer_id", customerID))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetCustomerID retrieves the customer ID from context
func GetCustomerID(ctx context.Context) string {
	if customerID, ok := ctx.Value(customerIDKey).(string); ok {
		return customerID
	}
	return ""
}

// GetTraceID returns the active span's trace ID, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// L returns the request-scoped logger with trace_id/span_id attached.
// Usage: logger.L(ctx).Info("order cancelled", zap.String("order_id", id))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		l = l.With(
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return l
}
