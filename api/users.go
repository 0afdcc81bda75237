package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/models"
)

type UserHandler struct {
	users *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{users: svc}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.users.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	u, err := h.users.ChangeRole(r.Context(), actor, mux.Vars(r)["id"], req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	if err := h.users.Delete(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
