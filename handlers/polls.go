// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/lifecycle"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
)

type PollHandler struct {
	mgr      *lifecycle.Manager
	sessions SessionStore
	cfg      cliparse.Config
}

func NewPollHandler(mgr *lifecycle.Manager, sessions SessionStore, cfg cliparse.Config) *PollHandler {
	return &PollHandler{mgr: mgr, sessions: sessions, cfg: cfg}
}

func (h *PollHandler) shareURL(pollID string) string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + "/polls/" + pollID
}

// CreatePoll handles POST /polls
// Creates the poll right away for a verified creator, otherwise answers
// 202 with a draft token to confirm once the emailed code arrives
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := identity(r, h.sessions, h.cfg, req.Email)
	poll, err := h.mgr.CreatePoll(r.Context(), id, req)

	var pending *lifecycle.PendingError
	if errors.As(err, &pending) {
		middleware.JSONResponse(w, http.StatusAccepted, models.PendingResponse{
			Status:     models.StatusVerificationRequired,
			DraftToken: pending.DraftToken,
			Message:    "Enter the code sent to " + pending.Email + " to publish your poll",
		})
		return
	}
	if err != nil {
		writeError(w, err, "create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:   poll.ID,
		ShareURL: h.shareURL(poll.ID),
	})
}

// ConfirmDraft handles POST /polls/drafts/{token}/confirm
// The body may be empty when the session already verified the draft's email
func (h *PollHandler) ConfirmDraft(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "draft token is required")
		return
	}

	sessionID, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req models.ConfirmDraftRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := identity(r, h.sessions, h.cfg, "")
	id.SessionID = sessionID
	poll, err := h.mgr.ConfirmDraft(r.Context(), id, token, strings.TrimSpace(req.Code))
	if errors.Is(err, lifecycle.ErrVerificationRequired) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, errorMessage(err))
		return
	}
	if err != nil {
		writeError(w, err, "confirm poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:   poll.ID,
		ShareURL: h.shareURL(poll.ID),
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.mgr.GetPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "load poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// DeletePoll handles DELETE /polls/{id}
// Only the creator, verified in this session, may delete
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	id := identity(r, h.sessions, h.cfg, "")
	if err := h.mgr.DeletePoll(r.Context(), pollID, id); err != nil {
		writeError(w, err, "delete poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "Poll deleted",
	})
}
