package httpx

import "context"

type ctxKey string

const CtxKeyAccountID ctxKey = "account_id"

// WithAccountID stores the authenticated account id on ctx.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, CtxKeyAccountID, accountID)
}

// AccountIDFromContext returns the id placed there by AuthnMiddleware.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyAccountID).(string)
	return id, ok && id != ""
}
