package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) searchStudents(w http.ResponseWriter, r *http.Request) {
	found, err := a.svc.Social.Search(r.Context(), caller(r).UID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (a *API) socialState(w http.ResponseWriter, r *http.Request) {
	state, err := a.svc.Social.State(r.Context(), caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *API) sendRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToID string `json:"toId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	fr, err := a.svc.Social.SendRequest(r.Context(), caller(r).UID, req.ToID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fr)
}

func (a *API) acceptRequest(w http.ResponseWriter, r *http.Request) {
	friend, err := a.svc.Social.Accept(r.Context(), caller(r).UID, chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friend)
}

func (a *API) declineRequest(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Social.Decline(r.Context(), caller(r).UID, chi.URLParam(r, "requestID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
