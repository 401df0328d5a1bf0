// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle holds the rules for polls, ballots and accounts.

Manager sits between the HTTP handlers and the store. Every error it
returns for a rule violation wraps one of:

  - ErrValidation: the request is malformed
  - ErrNotFound: the poll, draft or user does not exist
  - ErrUnauthorized: the requester may not do this
  - ErrVerificationRequired: an emailed code must be confirmed first

# Identity

An Identity carries the session ID and, when known, an email. An email
counts only if the verify service says this session has verified it.

# Creating Polls

A verified creator's poll is stored immediately. Otherwise the validated
form is saved as a draft, a code is mailed, and a *PendingError carrying
the draft token is returned. ConfirmDraft turns the draft into a poll;
drafts older than DraftTTL are discarded.

# Ballots

	receipt, err := mgr.SubmitBallot(ctx, pollID, id, []string{"Pizza"})

Selections are trimmed, NFC-normalized and deduplicated, then checked
against the poll's options. A verified voter's ballot is keyed by email
and replaced on resubmission. Anonymous ballots get a fresh key each
time and never collide.

# Deletion

DeletePoll answers ErrNotFound both for missing polls and for requesters
without a verified email, and ErrUnauthorized for other verified users.
DeleteUser removes the user's polls, ballots, drafts and sessions.
*/
package lifecycle
