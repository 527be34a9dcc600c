package auth

import (
	"errors"
	"net/http"
	"strings"

	"student-analyzer/internal/domain"
)

// TokenFromRequest reads a bearer token from the Authorization header, or
// from the token query parameter for websocket upgrades.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// Middleware rejects requests without a live session and stores the user
// on the request context.
func Middleware(p Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			user, err := p.CurrentUser(r.Context(), token)
			if errors.Is(err, domain.ErrUnauthenticated) {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "session lookup failed", http.StatusBadGateway)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole lets through only users holding role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
