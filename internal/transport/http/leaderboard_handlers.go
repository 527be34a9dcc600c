package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"student-analyzer/internal/domain"
)

func (a *API) subjectBoard(w http.ResponseWriter, r *http.Request) {
	lb, err := a.svc.Leaderboards.Subject(r.Context(), domain.Subject(chi.URLParam(r, "subject")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (a *API) overallBoard(w http.ResponseWriter, r *http.Request) {
	lb, err := a.svc.Leaderboards.Overall(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (a *API) classBoard(w http.ResponseWriter, r *http.Request) {
	lb, err := a.svc.Leaderboards.Class(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (a *API) standings(w http.ResponseWriter, r *http.Request) {
	st, err := a.svc.Leaderboards.Standings(r.Context(), caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
