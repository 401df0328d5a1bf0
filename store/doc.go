// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls, ballots and the verification state around them.

# Usage

	s := store.New(conn)
	poll, err := s.GetPoll(ctx, pollID)

Every method takes a context and returns ErrNotFound when the addressed row
does not exist. Multi-statement operations run inside a single transaction.

# Ballots

PutBallot is the only place ballot upsert rules live:

  - Verified ballots are keyed by (poll_id, voter_key) where the voter key is
    the verified email. Resubmitting replaces the selection and keeps the ID.
  - Anonymous ballots carry a fresh "anon-" key and are always inserted. A
    reused anonymous key fails with ErrDuplicate.

A ballot for a poll deleted concurrently fails with ErrNotFound.

# Deletion

DeletePoll removes choices, ballots and options before the poll itself.
DeleteUser removes every poll the user created, every ballot cast under
their email, and their sessions, drafts and codes.

# Drafts and Codes

Drafts hold a CreatePollRequest as JSON until its creator verifies.
FinalizeDraft deletes the draft and inserts the poll in one transaction, so
a draft token creates at most one poll.

Verification codes are stored hashed per (session, email). Saving a new
code resets its attempt counter.
*/
package store
