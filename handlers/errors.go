// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/lifecycle"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/verify"
)

// SessionStore looks up the session behind a request
type SessionStore interface {
	GetSession(ctx context.Context, id string) (models.Session, error)
}

// identity builds the requester's identity. Without an explicit email the
// session's verified email is used.
func identity(r *http.Request, sessions SessionStore, cfg cliparse.Config, email string) lifecycle.Identity {
	id := lifecycle.Identity{
		SessionID: middleware.SessionToken(r),
		Email:     strings.TrimSpace(email),
		IPHash:    auth.HashIP(middleware.GetClientIP(r), cfg.IPHashSalt),
		UserAgent: r.UserAgent(),
	}

	if id.Email == "" && id.SessionID != "" {
		sess, err := sessions.GetSession(r.Context(), id.SessionID)
		if err == nil && sess.Verified {
			id.Email = sess.Email
		}
	}
	return id
}

// errorMessage strips the sentinel prefix so clients see only the detail
func errorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		lifecycle.ErrValidation,
		lifecycle.ErrVerificationRequired,
		lifecycle.ErrNotFound,
		lifecycle.ErrUnauthorized,
	} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

// writeError maps core errors onto HTTP statuses. Verification required is
// checked first because it also matches ErrValidation on ballots.
func writeError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, lifecycle.ErrVerificationRequired):
		middleware.JSONResponse(w, http.StatusAccepted, models.PendingResponse{
			Status:  models.StatusVerificationRequired,
			Message: errorMessage(err),
		})
	case errors.Is(err, lifecycle.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, lifecycle.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, errorMessage(err))
	case errors.Is(err, lifecycle.ErrUnauthorized):
		middleware.ErrorResponse(w, http.StatusForbidden, errorMessage(err))
	case errors.Is(err, verify.ErrRateLimited):
		middleware.ErrorResponse(w, http.StatusTooManyRequests, "Too many codes requested, try again later")
	default:
		slog.Error("failed to "+action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}

// requireSession rejects requests without a well-formed session token
func requireSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := middleware.SessionToken(r)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, middleware.SessionHeader+" header required")
		return "", false
	}
	return token, true
}
