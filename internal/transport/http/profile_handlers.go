package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"student-analyzer/internal/domain"
)

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Profiles.Profile(r.Context(), caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	p, err := a.svc.Profiles.UpdateProfile(r.Context(), caller(r).UID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.svc.Profiles.Projects(r.Context(), caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var in domain.ProjectInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := a.svc.Profiles.CreateProject(r.Context(), caller(r).UID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	var in domain.ProjectInput
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	p, err := a.svc.Profiles.UpdateProject(r.Context(), caller(r).UID, chi.URLParam(r, "projectID"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Profiles.DeleteProject(r.Context(), caller(r).UID, chi.URLParam(r, "projectID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
