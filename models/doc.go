// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: title, description, cover_url, seats, options, require_verification, email
  - ConfirmDraftRequest: code
  - SubmitBallotRequest: approved option labels, optional email
  - RequestCodeRequest, VerifyCodeRequest: email verification
  - DeleteUserRequest: email

# Response Types

  - CreatePollResponse: poll_id, share_url
  - PendingResponse: status, draft_token, message
  - SubmitBallotResponse: ballot_id, status, message
  - SessionResponse, SessionInfo: session token and state
  - BallotCountResponse, MyPollsResponse
  - ErrorResponse: error, message

# Domain Types

  - Poll, Option: a poll and its ordered options
  - Ballot: one voter's approved labels
  - Session, User, Draft, VerificationCode: identity and verification

Creator emails and voter keys are tagged json:"-" and never leave the server.

# Constants

Ballot outcomes:

	StatusCreated              = "created"
	StatusUpdated              = "updated"
	StatusVerificationRequired = "verification_required"
*/
package models
