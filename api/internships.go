package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/applications"
	"github.com/sagniknandigit/internship-management/internal/internships"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

type InternshipHandler struct {
	internships  *internships.Service
	applications *applications.Service
}

func NewInternshipHandler(svc *internships.Service, apps *applications.Service) *InternshipHandler {
	return &InternshipHandler{internships: svc, applications: apps}
}

// List supports ?title=, ?sort=apply_by|-apply_by, ?page= and ?page_size=.
// Without page every matching listing is returned.
func (h *InternshipHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := queryInt(r, "page_size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	out, err := h.internships.List(r.Context(), internships.ListQuery{
		Title:    q.Get("title"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InternshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req internships.CreateInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	in, err := h.internships.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (h *InternshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	in, err := h.internships.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *InternshipHandler) Applicants(w http.ResponseWriter, r *http.Request) {
	out, err := h.internships.Applicants(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *InternshipHandler) End(w http.ResponseWriter, r *http.Request) {
	stat, err := h.internships.End(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

func (h *InternshipHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req models.Applicant
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	app, err := h.applications.Submit(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}
