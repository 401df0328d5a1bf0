// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/handlers"
	"github.com/danielhkuo/approval-vote/lifecycle"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/store"
	"github.com/danielhkuo/approval-vote/verify"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, mailer verify.Mailer) *http.ServeMux {
	mux := http.NewServeMux()

	// Core services
	st := store.New(db)
	verifier := verify.NewService(st, mailer, verify.Options{CodeTTL: cfg.CodeTTL})
	mgr := lifecycle.NewManager(st, verifier)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(st, verifier, cfg)
	pollHandler := handlers.NewPollHandler(mgr, st, cfg)
	votingHandler := handlers.NewVotingHandler(mgr, st, cfg)
	resultsHandler := handlers.NewResultsHandler(mgr, cfg)
	userHandler := handlers.NewUserHandler(mgr, st, cfg)

	// Writes that mail codes or create rows are throttled per IP
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(limiter.Limit(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Sessions and email verification
	mux.HandleFunc("POST /sessions", limited(sessionHandler.Create))
	mux.HandleFunc("DELETE /sessions", middleware.WithLogging(sessionHandler.Logout))
	mux.HandleFunc("GET /sessions/me", middleware.WithLogging(sessionHandler.Me))
	mux.HandleFunc("POST /auth/code", limited(sessionHandler.RequestCode))
	mux.HandleFunc("POST /auth/verify", limited(sessionHandler.Verify))

	// Poll lifecycle
	mux.HandleFunc("POST /polls", limited(pollHandler.CreatePoll))
	mux.HandleFunc("POST /polls/drafts/{token}/confirm", limited(pollHandler.ConfirmDraft))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/ballots", limited(votingHandler.SubmitBallot))

	// Results retrieval (public, live)
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /polls/{id}/results.csv", middleware.WithLogging(resultsHandler.ExportCSV))
	mux.HandleFunc("GET /polls/{id}/ballot-count", middleware.WithLogging(resultsHandler.GetBallotCount))

	// Account
	mux.HandleFunc("GET /users/me/polls", middleware.WithLogging(userHandler.MyPolls))
	mux.HandleFunc("DELETE /users", middleware.WithLogging(userHandler.DeleteUser))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("approval-vote API v1"))
	})

	return mux
}
