package api

import (
	"io"
	"net/http"

	"github.com/sagniknandigit/internship-management/internal/settings"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
)

type SettingsHandler struct {
	settings *settings.Service
}

func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := currentUser(r)
	doc, err := h.settings.Get(r.Context(), actor.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, apperr.Invalid("body", "is too large"))
		return
	}
	actor, _ := currentUser(r)
	doc, err := h.settings.Put(r.Context(), actor.ID, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
