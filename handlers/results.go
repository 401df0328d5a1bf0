// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/lifecycle"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/tally"
)

// ResultsResponse is the tally of a poll plus a sentence describing it
type ResultsResponse struct {
	PollID string `json:"poll_id"`
	Title  string `json:"title"`
	tally.Result
	WinnersText string `json:"winners_text"`
}

type ResultsHandler struct {
	mgr *lifecycle.Manager
	cfg cliparse.Config
}

func NewResultsHandler(mgr *lifecycle.Manager, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{mgr: mgr, cfg: cfg}
}

// GetResults handles GET /polls/{id}/results
// Results are live; approval polls have no sealed phase
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	poll, result, err := h.mgr.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "compute results")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ResultsResponse{
		PollID:      poll.ID,
		Title:       poll.Title,
		Result:      result,
		WinnersText: tally.WinnersText(result),
	})
}

// ExportCSV handles GET /polls/{id}/results.csv
// One row per option in rank order
func (h *ResultsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	poll, result, err := h.mgr.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "export results")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="poll-`+poll.ID+`-results.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	cw.Write([]string{"place", "option", "approvals", "share", "winner", "behind"})
	for _, opt := range result.Options {
		cw.Write([]string{
			humanize.Ordinal(opt.Rank),
			opt.Label,
			strconv.Itoa(opt.Count),
			approvalShare(opt.Count, result.BallotCount),
			strconv.FormatBool(opt.Winner),
			strconv.Itoa(opt.Behind),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write CSV", "poll_id", poll.ID, "error", err)
	}
}

// approvalShare is the percentage of ballots approving an option
func approvalShare(count, ballots int) string {
	if ballots == 0 {
		return "0%"
	}
	return humanize.FtoaWithDigits(float64(count)*100/float64(ballots), 1) + "%"
}

// GetBallotCount handles GET /polls/{id}/ballot-count
func (h *ResultsHandler) GetBallotCount(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	count, err := h.mgr.BallotCount(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "count ballots")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotCountResponse{
		PollID:      pollID,
		BallotCount: count,
	})
}
