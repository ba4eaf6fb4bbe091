package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	passIDKey contextKey = "pass_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithPassID tags the context and the returned logger with a pass identifier,
// so SQL statements issued by that pass can be correlated with its records.
func WithPassID(ctx context.Context, logger *zap.Logger, passID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, passIDKey, passID)
	enriched := logger.With(zap.String("pass_id", passID))
	return WithContext(ctx, enriched), enriched
}

// GetPassID retrieves the pass identifier from context
func GetPassID(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey).(string); ok {
		return id
	}
	return ""
}
