package auth

import "context"

type userContextKey struct{}

// SetUser stores the signed-in user's email on the request context.
func SetUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userContextKey{}, email)
}

// UserFromContext returns the signed-in user's email, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userContextKey{}).(string)
	return email, ok
}
