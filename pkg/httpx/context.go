package httpx

import "context"

// Identity is the authenticated caller as seen by the middleware.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// WithIdentity returns ctx carrying the authenticated caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the caller attached by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}
