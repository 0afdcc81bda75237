package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sagniknandigit/internship-management/internal/notify"
)

type UpdateHandler struct {
	notify *notify.Service
}

func NewUpdateHandler(svc *notify.Service) *UpdateHandler {
	return &UpdateHandler{notify: svc}
}

func (h *UpdateHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req notify.PostInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	actor, _ := currentUser(r)
	up, err := h.notify.Post(r.Context(), actor, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

func (h *UpdateHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	out, err := h.notify.List(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UpdateHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	n, err := h.notify.UnreadCount(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *UpdateHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	if err := h.notify.MarkRead(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UpdateHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	n, err := h.notify.MarkAllRead(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked": n})
}
