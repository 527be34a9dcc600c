package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareAndRoles(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider()
	if _, err := p.CreateAccount(ctx, "ana@example.com", "secret1", RoleStudent); err != nil {
		t.Fatalf("create: %v", err)
	}
	session, err := p.SignIn(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		w.Write([]byte(user.UID))
	})
	student := Middleware(p)(RequireRole(RoleStudent)(ok))
	teacher := Middleware(p)(RequireRole(RoleTeacher)(ok))

	cases := []struct {
		name    string
		handler http.Handler
		target  string
		header  string
		want    int
	}{
		{"no token", student, "/", "", http.StatusUnauthorized},
		{"bad token", student, "/", "Bearer nope", http.StatusUnauthorized},
		{"bearer", student, "/", "Bearer " + session.Token, http.StatusOK},
		{"query token", student, "/?token=" + session.Token, "", http.StatusOK},
		{"wrong role", teacher, "/", "Bearer " + session.Token, http.StatusForbidden},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, c.target, nil)
		if c.header != "" {
			req.Header.Set("Authorization", c.header)
		}
		rec := httptest.NewRecorder()
		c.handler.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, rec.Code)
		}
		if c.want == http.StatusOK && rec.Body.String() != session.User.UID {
			t.Fatalf("%s: user not on context", c.name)
		}
	}
}
