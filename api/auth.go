package api

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/sagniknandigit/internship-management/internal/users"
	"github.com/sagniknandigit/internship-management/pkg/apperr"
	"github.com/sagniknandigit/internship-management/pkg/redis"
)

type AuthHandler struct {
	users   *users.Service
	limiter *redis.Limiter
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(svc *users.Service, limiter *redis.Limiter) *AuthHandler {
	return &AuthHandler{users: svc, limiter: limiter}
}

type signinRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req users.RegisterInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := h.users.Register(ctx, req); err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := h.users.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := apperr.Validate(req); err != nil {
		writeError(w, r, err)
		return
	}

	if !h.limiter.Allow(r.Context(), "signin:"+clientIP(r)+":"+strings.ToLower(req.Email)) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many sign-in attempts, try again later"})
		return
	}

	sess, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Signout revokes the presented token until it would have expired.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	claims := currentClaims(r)
	if claims == nil {
		writeError(w, r, fmt.Errorf("no session: %w", apperr.ErrUnauthorized))
		return
	}
	if err := h.users.SignOut(r.Context(), claims); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)
	writeJSON(w, http.StatusOK, u)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
