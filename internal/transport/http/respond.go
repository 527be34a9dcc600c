package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"student-analyzer/internal/domain"
)

type errResp struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errResp{Error: verr.Message, Field: verr.Field})
		return
	}
	status, msg := statusFor(err)
	writeErr(w, status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrStudentNotFound):
		return http.StatusNotFound, "Student not found. Please check the student ID and try again."
	case errors.Is(err, domain.ErrTeacherNotFound):
		return http.StatusNotFound, "Teacher profile not found. Please sign in again."
	case errors.Is(err, domain.ErrExamNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrAlreadyFriends),
		errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, domain.ErrAttemptNotStarted),
		errors.Is(err, domain.ErrAttemptFinished),
		errors.Is(err, domain.ErrAttemptNotSubmitted):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusBadGateway, "upstream store unavailable, please try again"
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "", "bad json")
	}
	return nil
}
