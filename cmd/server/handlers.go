package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/sessionguard/pkg/identity"
	"github.com/dmitrymomot/sessionguard/pkg/logger"
	"github.com/dmitrymomot/sessionguard/pkg/session"
)

type handlers struct {
	mgr *session.Manager
	log *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID    string    `json:"user_id"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{UserID: s.UserID.String(), CSRFToken: s.CSRFToken, ExpiresAt: s.ExpiresAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s, err := h.mgr.Login(w, r, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newSessionResponse(s))
	case errors.Is(err, identity.ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	default:
		h.log.ErrorContext(r.Context(), "login failed", logger.Error(err))
		http.Error(w, "authentication system error", http.StatusInternalServerError)
	}
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.mgr.Logout(w, r); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
		http.Error(w, "authentication system error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) logoutEverywhere(w http.ResponseWriter, r *http.Request) {
	n, err := h.mgr.LogoutEverywhere(r)
	if err != nil {
		http.Error(w, "authentication system error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
}

func (h *handlers) rotate(w http.ResponseWriter, r *http.Request) {
	current := session.MustFromContext(r.Context())

	next, err := h.mgr.Rotate(r.Context(), current.Token, session.RequestContextFromRequest(r))
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotRotated):
		_ = h.mgr.Transport().ClearToken(w)
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return
	default:
		h.log.ErrorContext(r.Context(), "session rotation failed", logger.Error(err))
		http.Error(w, "authentication system error", http.StatusInternalServerError)
		return
	}

	if err := h.mgr.Transport().SetToken(w, r, next.Token, h.mgr.Config().TTL); err != nil {
		h.log.ErrorContext(r.Context(), "failed to send rotated token", logger.Error(err))
		http.Error(w, "authentication system error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(next))
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	s := session.MustFromContext(r.Context())
	ident, _ := identity.FromContext(r.Context())

	resp := map[string]any{
		"user_id":          s.UserID,
		"session_created":  s.CreatedAt,
		"last_activity_at": s.LastActivityAt,
	}
	if ident != nil {
		resp["email"] = ident.Email
		resp["role"] = ident.Role
	}
	writeJSON(w, http.StatusOK, resp)
}

// revokeUserSessions lets an administrator sign a user out of every device.
func (h *handlers) revokeUserSessions(w http.ResponseWriter, r *http.Request, userID string) {
	id, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	n, err := h.mgr.RevokeAll(r.Context(), id, "")
	if err != nil {
		http.Error(w, "authentication system error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
}
