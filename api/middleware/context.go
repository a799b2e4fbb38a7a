package middleware

import "context"

type contextKey string

const ctxBearer contextKey = "bearer_token"

// BearerFromContext returns the caller's access token, empty when absent.
func BearerFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxBearer).(string); ok {
		return v
	}
	return ""
}

// WithBearer injects the caller's access token into the context.
func WithBearer(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBearer, token)
}
