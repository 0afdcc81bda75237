package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/interviews"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

type InterviewHandler struct {
	interviews *interviews.Service
	loc        *time.Location
}

// NewInterviewHandler creates the handler; loc is the zone interview dates
// are written in.
func NewInterviewHandler(svc *interviews.Service, loc *time.Location) *InterviewHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InterviewHandler{interviews: svc, loc: loc}
}

func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req interviews.ScheduleInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	v, err := h.interviews.Schedule(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.interviews.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InterviewHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	v, err := h.interviews.SetStatus(r.Context(), actor, mux.Vars(r)["id"], models.MeetingStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *InterviewHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	cal, err := h.interviews.Calendar(r.Context(), actor, h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="interviews.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal))
}
