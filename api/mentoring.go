package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/mentoring"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

// MentoringHandler serves assignments, conversations, tasks and shared
// documents between mentors and their interns.
type MentoringHandler struct {
	mentoring *mentoring.Service
}

func NewMentoringHandler(svc *mentoring.Service) *MentoringHandler {
	return &MentoringHandler{mentoring: svc}
}

func (h *MentoringHandler) Interns(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Interns(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MentoringHandler) Mentors(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Mentors(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MentoringHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Conversations(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MentoringHandler) Messages(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Messages(r.Context(), actor, mux.Vars(r)["internId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type messageRequest struct {
	Text string `json:"text"`
}

func (h *MentoringHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	m, err := h.mentoring.Send(r.Context(), actor, mux.Vars(r)["internId"], req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MentoringHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	var req mentoring.TaskInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	t, err := h.mentoring.AssignTask(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *MentoringHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Tasks(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type submissionRequest struct {
	Submission string `json:"submission"`
}

func (h *MentoringHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	t, err := h.mentoring.SubmitTask(r.Context(), actor, mux.Vars(r)["id"], req.Submission)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type reviewRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (h *MentoringHandler) ReviewTask(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	t, err := h.mentoring.ReviewTask(r.Context(), actor, mux.Vars(r)["id"], models.TaskStatus(req.Status), req.Feedback)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *MentoringHandler) ShareDocument(w http.ResponseWriter, r *http.Request) {
	var req mentoring.DocumentInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	d, err := h.mentoring.ShareDocument(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *MentoringHandler) Documents(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.mentoring.Documents(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
