package http

import (
	"fmt"
	"net/http"

	"student-analyzer/internal/report"
)

func (a *API) rosterStudents(w http.ResponseWriter, r *http.Request) {
	students, err := a.svc.Roster.Students(r.Context(), caller(r).UID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (a *API) linkStudent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	st, err := a.svc.Roster.Link(r.Context(), caller(r).UID, req.StudentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) rosterReport(w http.ResponseWriter, r *http.Request) {
	rep, err := a.svc.Roster.Report(r.Context(), caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(rep)))
	if err := report.Write(w, rep); err != nil {
		a.log.Error().Err(err).Str("teacher", rep.Teacher.UID).Msg("write report")
	}
}
