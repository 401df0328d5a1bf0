// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/store"
	"github.com/danielhkuo/approval-vote/verify"
)

type SessionHandler struct {
	store    *store.Store
	verifier *verify.Service
	cfg      cliparse.Config
}

func NewSessionHandler(s *store.Store, v *verify.Service, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{store: s, verifier: v, cfg: cfg}
}

// Create handles POST /sessions
// Starts an anonymous session and returns its token
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		slog.Error("failed to generate session token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if _, err := h.store.CreateSession(r.Context(), token); err != nil {
		slog.Error("failed to insert session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	slog.Info("session created")

	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{
		SessionToken: token,
	})
}

// Logout handles DELETE /sessions
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteSession(r.Context(), token); err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Logged out",
	})
}

// Me handles GET /sessions/me
func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r)
	if !ok {
		return
	}

	sess, err := h.store.GetSession(r.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown session")
		return
	}
	if err != nil {
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SessionInfo{
		Email:     sess.Email,
		Verified:  sess.Verified,
		CreatedAt: sess.CreatedAt,
	})
}

// RequestCode handles POST /auth/code
// Emails a one-time code for the session to prove an address
func (h *SessionHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req models.RequestCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	if _, err := h.store.GetSession(r.Context(), token); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown session")
			return
		}
		slog.Error("failed to query session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := h.verifier.RequestCode(r.Context(), token, email); err != nil {
		writeError(w, err, "send code")
		return
	}

	middleware.JSONResponse(w, http.StatusAccepted, models.MessageResponse{
		Message: "A verification code was sent to " + email,
	})
}

// Verify handles POST /auth/verify
func (h *SessionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req models.VerifyCodeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "A valid email is required")
		return
	}

	verified, err := h.verifier.Verify(r.Context(), token, email, req.Code)
	switch {
	case errors.Is(err, verify.ErrNoCode), errors.Is(err, verify.ErrCodeExpired), errors.Is(err, verify.ErrTooManyAttempts):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Code is no longer valid, request a new one")
		return
	case err != nil:
		slog.Error("failed to verify code", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to verify code")
		return
	case !verified:
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Incorrect code")
		return
	}

	slog.Info("email verified")

	middleware.JSONResponse(w, http.StatusOK, models.SessionInfo{
		Email:    email,
		Verified: true,
	})
}
