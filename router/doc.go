// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the approval-vote API.

	mux := router.NewRouter(db, cfg, mailer)

NewRouter builds the store, the verification service and the lifecycle
manager, then wires every handler to them.

# Endpoints

Health:

	GET /health
	GET /

Sessions and verification:

	POST   /sessions    - Start a session
	DELETE /sessions    - Log out
	GET    /sessions/me - Session state
	POST   /auth/code   - Email a one-time code
	POST   /auth/verify - Check a code

Polls:

	POST   /polls                        - Create poll (or draft)
	POST   /polls/drafts/{token}/confirm - Confirm a draft
	GET    /polls/{id}                   - Poll and options
	DELETE /polls/{id}                   - Delete (creator only)

Voting and results:

	POST /polls/{id}/ballots      - Submit or replace a ballot
	GET  /polls/{id}/results      - Live results
	GET  /polls/{id}/results.csv  - Results as CSV
	GET  /polls/{id}/ballot-count - Ballot count

Account:

	GET    /users/me/polls - Polls created by the verified email
	DELETE /users          - Delete an account and everything it owns

Routes that create rows or send mail are rate limited per client IP.
*/
package router
