package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request-scoped logger, or slog.Default when the
// request never passed through HTTPMiddleware.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithAccount tags later log lines on ctx with account_id. An empty id
// leaves ctx untouched.
func WithAccount(ctx context.Context, accountID string) context.Context {
	if accountID == "" {
		return ctx
	}
	return WithContext(ctx, FromContext(ctx).With(slog.String("account_id", accountID)))
}
