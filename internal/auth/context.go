package auth

import "context"

type ctxKey string

const ctxKeyUser ctxKey = "user"

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// UserFromContext returns the authenticated user set by Middleware.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(User)
	return user, ok
}
