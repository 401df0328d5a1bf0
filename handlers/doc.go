// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the approval-vote API.

# Handler Types

Each handler is a struct built by a constructor:

  - SessionHandler: Sessions and email verification
  - PollHandler: Poll creation, drafts, lookup and deletion
  - VotingHandler: Ballot submission
  - ResultsHandler: Live results, CSV export and ballot counts
  - UserHandler: A user's polls and account deletion

Handlers hold a *lifecycle.Manager for domain rules and translate its
errors into statuses in one place (writeError):

	lifecycle.ErrVerificationRequired → 202 with status "verification_required"
	lifecycle.ErrValidation           → 400
	lifecycle.ErrNotFound             → 404
	lifecycle.ErrUnauthorized         → 403
	verify.ErrRateLimited             → 429

# Sessions

Clients call POST /sessions and send the token back in the
X-Session-Token header. A session becomes verified for one email after
POST /auth/code and POST /auth/verify.

# Poll Creation

	POST /polls                        → CreatePoll
	POST /polls/drafts/{token}/confirm → ConfirmDraft

A creator whose email is not verified in the session gets 202 with a
draft token. The poll is created once the mailed code is confirmed.

# Voting

	POST /polls/{id}/ballots → SubmitBallot

A verified voter's second ballot replaces the first (200, "updated").
Everyone else casts a new anonymous ballot (201, "created"). Polls that
require verification answer unverified voters with 202.

# Results

Results are computed on every request; there is no closed state.

	GET /polls/{id}/results      → GetResults
	GET /polls/{id}/results.csv  → ExportCSV
	GET /polls/{id}/ballot-count → GetBallotCount
*/
package handlers
