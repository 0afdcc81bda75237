package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/applications"
	"github.com/sagniknandigit/internship-management/pkg/models"
	"github.com/sagniknandigit/internship-management/pkg/repository"
)

type ApplicationHandler struct {
	applications *applications.Service
}

func NewApplicationHandler(svc *applications.Service) *ApplicationHandler {
	return &ApplicationHandler{applications: svc}
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.applications.List(r.Context(), repository.ApplicationFilter{
		InternID:     q.Get("intern_id"),
		InternshipID: q.Get("internship_id"),
		Status:       models.ApplicationStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ApplicationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.applications.List(r.Context(), repository.ApplicationFilter{InternID: actor.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	app, err := h.applications.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Application *models.Application `json:"application"`
	Changed     bool                `json:"changed"`
}

func (h *ApplicationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, changed, err := h.applications.SetStatus(r.Context(), mux.Vars(r)["id"], models.ApplicationStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Application: app, Changed: changed})
}

type mentorRequest struct {
	MentorID string `json:"mentor_id"`
}

func (h *ApplicationHandler) AssignMentor(w http.ResponseWriter, r *http.Request) {
	var req mentorRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := h.applications.AssignMentor(r.Context(), mux.Vars(r)["id"], req.MentorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// Eligible lists the applications of an intern that can still get an interview.
func (h *ApplicationHandler) Eligible(w http.ResponseWriter, r *http.Request) {
	out, err := h.applications.EligibleForInterview(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Transitions exposes the statuses reachable from ?from= under the active policy.
func (h *ApplicationHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	from := models.ApplicationStatus(r.URL.Query().Get("from"))
	wf := h.applications.Workflow()
	writeJSON(w, http.StatusOK, map[string]any{
		"policy": wf.Policy(),
		"from":   from,
		"next":   wf.Next(from),
	})
}
