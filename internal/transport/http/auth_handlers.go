package http

import (
	"context"
	"net/http"

	"student-analyzer/internal/auth"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) signUpStudent(w http.ResponseWriter, r *http.Request) {
	var in auth.StudentSignup
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	a.signUp(w, r, in.Email, in.Password, func(ctx context.Context) error {
		_, err := a.svc.Registrar.Student(ctx, in)
		return err
	})
}

func (a *API) signUpTeacher(w http.ResponseWriter, r *http.Request) {
	var in auth.TeacherSignup
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	a.signUp(w, r, in.Email, in.Password, func(ctx context.Context) error {
		_, err := a.svc.Registrar.Teacher(ctx, in)
		return err
	})
}

// signUp registers the account and signs it straight in.
func (a *API) signUp(w http.ResponseWriter, r *http.Request, email, password string, register func(context.Context) error) {
	if err := register(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	session, err := a.svc.Auth.SignIn(r.Context(), email, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) signIn(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	session, err := a.svc.Auth.SignIn(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) signOut(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		writeErr(w, http.StatusUnauthorized, "missing bearer")
		return
	}
	if _, err := a.svc.Auth.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, caller(r))
}
