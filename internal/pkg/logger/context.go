package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Field names shared by request-scoped loggers.
const (
	FieldRequestID = "request_id"
	FieldTenantID  = "tenant_id"
)

// WithContext stores a request-scoped logger in ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger, falling back to the global one.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}

// WithFields returns ctx carrying a child of the current request logger.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithContext(ctx, FromContext(ctx).With(fields...))
}
