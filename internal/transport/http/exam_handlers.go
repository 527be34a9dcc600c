package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"student-analyzer/internal/domain"
)

func (a *API) listExams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Exams.Catalog())
}

func (a *API) getExam(w http.ResponseWriter, r *http.Request) {
	exam, err := a.svc.Exams.Exam(chi.URLParam(r, "examID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (a *API) beginAttempt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExamID string `json:"examId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.ExamID == "" {
		writeError(w, domain.Invalid("examId", req.ExamID, "examId required"))
		return
	}
	snap, err := a.svc.Exams.Begin(r.Context(), caller(r).UID, req.ExamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (a *API) getAttempt(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Get(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

func (a *API) startAttempt(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Start(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

// answerBody selects an option for a multiple-choice question or carries
// the draft of a coding problem.
type answerBody struct {
	Option *int    `json:"option"`
	Text   *string `json:"text"`
}

func (a *API) answer(w http.ResponseWriter, r *http.Request) {
	var body answerBody
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	uid, id, qid := caller(r).UID, chi.URLParam(r, "attemptID"), chi.URLParam(r, "questionID")
	switch {
	case body.Option != nil:
		a.attemptResult(w)(a.svc.Exams.Select(r.Context(), uid, id, qid, *body.Option))
	case body.Text != nil:
		a.attemptResult(w)(a.svc.Exams.Draft(r.Context(), uid, id, qid, *body.Text))
	default:
		writeError(w, domain.Invalid("option", nil, "option or text required"))
	}
}

func (a *API) nextQuestion(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Next(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

func (a *API) prevQuestion(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Prev(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

func (a *API) submitAttempt(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Submit(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

func (a *API) saveAttempt(w http.ResponseWriter, r *http.Request) {
	a.attemptResult(w)(a.svc.Exams.Save(r.Context(), caller(r).UID, chi.URLParam(r, "attemptID")))
}

func (a *API) attemptResult(w http.ResponseWriter) func(domain.AttemptSnapshot, error) {
	return func(snap domain.AttemptSnapshot, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}
