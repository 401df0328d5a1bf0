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
	"github.com/danielhkuo/approval-vote/tally"
)

type VotingHandler struct {
	mgr      *lifecycle.Manager
	sessions SessionStore
	cfg      cliparse.Config
}

func NewVotingHandler(mgr *lifecycle.Manager, sessions SessionStore, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{mgr: mgr, sessions: sessions, cfg: cfg}
}

// SubmitBallot handles POST /polls/{id}/ballots
// 201 for a new ballot, 200 when a verified voter replaced theirs,
// 202 when the poll needs a verified email first
func (h *VotingHandler) SubmitBallot(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.SubmitBallotRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := identity(r, h.sessions, h.cfg, req.Email)
	receipt, err := h.mgr.SubmitBallot(r.Context(), pollID, id, req.Approved)
	if errors.Is(err, lifecycle.ErrVerificationRequired) {
		message := "This poll only accepts verified ballots. Verify your email and submit again."
		if id.Email != "" && id.SessionID != "" {
			message = "Enter the code sent to " + id.Email + ", then submit again."
		}
		middleware.JSONResponse(w, http.StatusAccepted, models.SubmitBallotResponse{
			Status:  models.StatusVerificationRequired,
			Message: message,
		})
		return
	}
	if err != nil {
		writeError(w, err, "submit ballot")
		return
	}

	status, code := models.StatusCreated, http.StatusCreated
	if receipt.Updated {
		status, code = models.StatusUpdated, http.StatusOK
	}

	middleware.JSONResponse(w, code, models.SubmitBallotResponse{
		BallotID: receipt.BallotID,
		Status:   status,
		Message:  tally.ConfirmationText(receipt.Approved),
	})
}
