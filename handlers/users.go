// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/lifecycle"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
)

type UserHandler struct {
	mgr      *lifecycle.Manager
	sessions SessionStore
	cfg      cliparse.Config
}

func NewUserHandler(mgr *lifecycle.Manager, sessions SessionStore, cfg cliparse.Config) *UserHandler {
	return &UserHandler{mgr: mgr, sessions: sessions, cfg: cfg}
}

// MyPolls handles GET /users/me/polls
// Lists polls created by the session's verified email
func (h *UserHandler) MyPolls(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	polls, err := h.mgr.PollsByCreator(r.Context(), identity(r, h.sessions, h.cfg, ""))
	if errors.Is(err, lifecycle.ErrUnauthorized) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, errorMessage(err))
		return
	}
	if err != nil {
		writeError(w, err, "list polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MyPollsResponse{
		Polls: polls,
	})
}

// DeleteUser handles DELETE /users
// Removes the account named in the body along with its polls and ballots
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	var req models.DeleteUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is required")
		return
	}

	id := identity(r, h.sessions, h.cfg, "")
	if err := h.mgr.DeleteUser(r.Context(), req.Email, id); err != nil {
		writeError(w, err, "delete user")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Account deleted",
	})
}
