// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/store"
	"github.com/danielhkuo/approval-vote/tally"
	"github.com/danielhkuo/approval-vote/verify"
)

// Store is the persistence the manager drives
type Store interface {
	CreatePoll(ctx context.Context, poll *models.Poll) error
	FinalizeDraft(ctx context.Context, token string, poll *models.Poll) error
	GetPoll(ctx context.Context, pollID string) (models.Poll, error)
	DeletePoll(ctx context.Context, pollID string) error
	ListPollsByCreator(ctx context.Context, email string) ([]models.PollSummary, error)
	PutBallot(ctx context.Context, b *models.Ballot) (bool, error)
	ListBallots(ctx context.Context, pollID string) ([]models.Ballot, error)
	CountBallots(ctx context.Context, pollID string) (int, error)
	SaveDraft(ctx context.Context, d *models.Draft) error
	GetDraft(ctx context.Context, token string) (models.Draft, error)
	DeleteDraft(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, email string) error
}

// Verifier answers whether a session has proven an email
type Verifier interface {
	IsVerified(ctx context.Context, sessionID, email string) (bool, error)
	RequestCode(ctx context.Context, sessionID, email string) error
	Verify(ctx context.Context, sessionID, email, code string) (bool, error)
}

// Identity is who is making a request. Email is the address the requester
// claims; it only counts once the session has verified it.
type Identity struct {
	SessionID string
	Email     string

	// Recorded on ballots, never used for decisions
	IPHash    string
	UserAgent string
}

// Receipt confirms an accepted ballot
type Receipt struct {
	BallotID string
	Updated  bool
	Verified bool
	Approved []string
}

// DraftTTL is how long a pending poll waits for its creator to verify
const DraftTTL = time.Hour

type Manager struct {
	store    Store
	verifier Verifier
	draftTTL time.Duration
	now      func() time.Time
}

func NewManager(s Store, v Verifier) *Manager {
	return &Manager{store: s, verifier: v, draftTTL: DraftTTL, now: time.Now}
}

// verifiedEmail returns the requester's email if their session verified it, else ""
func (m *Manager) verifiedEmail(ctx context.Context, id Identity) (string, error) {
	if id.SessionID == "" || id.Email == "" {
		return "", nil
	}
	email, err := auth.NormalizeEmail(id.Email)
	if err != nil {
		return "", nil
	}
	ok, err := m.verifier.IsVerified(ctx, id.SessionID, email)
	if err != nil {
		return "", fmt.Errorf("failed to check verification: %w", err)
	}
	if !ok {
		return "", nil
	}
	return email, nil
}

func newPoll(req models.CreatePollRequest, creator string) (models.Poll, error) {
	pollID, err := auth.GenerateID(16)
	if err != nil {
		return models.Poll{}, err
	}
	poll := models.Poll{
		ID:                  pollID,
		Title:               req.Title,
		Description:         req.Description,
		CoverURL:            req.CoverURL,
		Seats:               req.Seats,
		RequireVerification: req.RequireVerification,
		CreatorEmail:        creator,
		CreatedAt:           time.Now().UTC(),
	}
	for _, label := range req.Options {
		poll.Options = append(poll.Options, models.Option{Label: label})
	}
	return poll, nil
}

// CreatePoll validates the form and creates the poll when the creator's
// email is verified in this session. Otherwise the form is saved as a
// draft, a code is mailed and a *PendingError carrying the draft token is
// returned.
func (m *Manager) CreatePoll(ctx context.Context, id Identity, req models.CreatePollRequest) (models.Poll, error) {
	req, err := validateCreate(req)
	if err != nil {
		return models.Poll{}, err
	}

	rawEmail := req.Email
	if rawEmail == "" {
		rawEmail = id.Email
	}
	if rawEmail == "" {
		return models.Poll{}, fmt.Errorf("%w: email is required", ErrValidation)
	}
	email, err := auth.NormalizeEmail(rawEmail)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	req.Email = email

	creator, err := m.verifiedEmail(ctx, Identity{SessionID: id.SessionID, Email: email})
	if err != nil {
		return models.Poll{}, err
	}

	if creator != "" {
		poll, err := newPoll(req, creator)
		if err != nil {
			return models.Poll{}, err
		}
		if err := m.store.CreatePoll(ctx, &poll); err != nil {
			return models.Poll{}, err
		}
		slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options), "seats", poll.Seats)
		return poll, nil
	}

	if id.SessionID == "" {
		return models.Poll{}, fmt.Errorf("%w: a session is required to verify %s", ErrValidation, email)
	}

	draft := models.Draft{
		Token:     auth.NewDraftToken(),
		SessionID: id.SessionID,
		Email:     email,
		Request:   req,
	}
	if err := m.store.SaveDraft(ctx, &draft); err != nil {
		return models.Poll{}, err
	}
	if err := m.verifier.RequestCode(ctx, id.SessionID, email); err != nil {
		return models.Poll{}, err
	}

	slog.Info("poll creation pending verification", "draft", draft.Token)
	return models.Poll{}, &PendingError{DraftToken: draft.Token, Email: email}
}

// ConfirmDraft finalizes a pending poll. The code may be empty when the
// session has already verified the draft's email.
func (m *Manager) ConfirmDraft(ctx context.Context, id Identity, token, code string) (models.Poll, error) {
	draft, err := m.store.GetDraft(ctx, token)
	if errors.Is(err, store.ErrNotFound) || (err == nil && draft.SessionID != id.SessionID) {
		return models.Poll{}, fmt.Errorf("%w: draft %s", ErrNotFound, token)
	}
	if err != nil {
		return models.Poll{}, err
	}
	if m.now().Sub(draft.CreatedAt) > m.draftTTL {
		if err := m.store.DeleteDraft(ctx, token); err != nil {
			return models.Poll{}, err
		}
		return models.Poll{}, fmt.Errorf("%w: draft %s has expired", ErrNotFound, token)
	}

	if code == "" {
		ok, err := m.verifier.IsVerified(ctx, id.SessionID, draft.Email)
		if err != nil {
			return models.Poll{}, err
		}
		if !ok {
			return models.Poll{}, fmt.Errorf("%w: enter the code sent to %s", ErrVerificationRequired, draft.Email)
		}
	} else {
		ok, err := m.verifier.Verify(ctx, id.SessionID, draft.Email, code)
		switch {
		case errors.Is(err, verify.ErrNoCode), errors.Is(err, verify.ErrCodeExpired), errors.Is(err, verify.ErrTooManyAttempts):
			return models.Poll{}, fmt.Errorf("%w: %v, request a new code", ErrVerificationRequired, err)
		case err != nil:
			return models.Poll{}, err
		case !ok:
			return models.Poll{}, fmt.Errorf("%w: incorrect code", ErrVerificationRequired)
		}
	}

	req, err := validateCreate(draft.Request)
	if err != nil {
		return models.Poll{}, err
	}
	poll, err := newPoll(req, draft.Email)
	if err != nil {
		return models.Poll{}, err
	}
	if err := m.store.FinalizeDraft(ctx, token, &poll); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Poll{}, fmt.Errorf("%w: draft %s", ErrNotFound, token)
		}
		return models.Poll{}, err
	}

	slog.Info("poll created from draft", "poll_id", poll.ID, "draft", token)
	return poll, nil
}

// SubmitBallot records a selection. A voter verified in this session
// replaces any earlier ballot; everyone else casts a fresh anonymous ballot.
//
// On a poll that requires verification an unverified voter gets an error
// matching both ErrValidation and ErrVerificationRequired, and a code is
// mailed if they supplied an email.
func (m *Manager) SubmitBallot(ctx context.Context, pollID string, id Identity, approved []string) (Receipt, error) {
	if len(approved) == 0 {
		return Receipt{}, fmt.Errorf("%w: approve at least one option", ErrValidation)
	}

	poll, err := m.store.GetPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return Receipt{}, fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
	}
	if err != nil {
		return Receipt{}, err
	}

	labels, err := validateSelection(poll, approved)
	if err != nil {
		return Receipt{}, err
	}

	var email string
	if id.Email != "" {
		email, err = auth.NormalizeEmail(id.Email)
		if err != nil {
			return Receipt{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	voter, err := m.verifiedEmail(ctx, Identity{SessionID: id.SessionID, Email: email})
	if err != nil {
		return Receipt{}, err
	}

	if poll.RequireVerification && voter == "" {
		if email != "" && id.SessionID != "" {
			// The challenge still stands when no code can go out right now
			if err := m.verifier.RequestCode(ctx, id.SessionID, email); err != nil {
				slog.Warn("failed to send verification code", "poll_id", poll.ID, "error", err)
			}
		}
		return Receipt{}, fmt.Errorf("%w: %w: poll %s accepts only verified ballots", ErrValidation, ErrVerificationRequired, pollID)
	}

	b := models.Ballot{
		PollID:   poll.ID,
		Approved: labels,
	}
	if voter != "" {
		b.VoterKey = voter
		b.Verified = true
	} else {
		b.VoterKey = auth.NewAnonymousVoterKey()
	}
	if id.IPHash != "" {
		b.IPHash = &id.IPHash
	}
	if id.UserAgent != "" {
		b.UserAgent = &id.UserAgent
	}

	updated, err := m.store.PutBallot(ctx, &b)
	if errors.Is(err, store.ErrNotFound) {
		return Receipt{}, fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
	}
	if err != nil {
		return Receipt{}, err
	}

	slog.Info("ballot accepted", "poll_id", poll.ID, "ballot_id", b.ID, "verified", b.Verified, "updated", updated)
	return Receipt{
		BallotID: b.ID,
		Updated:  updated,
		Verified: b.Verified,
		Approved: labels,
	}, nil
}

// DeletePoll removes a poll and its ballots. Only the creator may delete;
// a requester without a verified email cannot tell an existing poll from a
// missing one.
func (m *Manager) DeletePoll(ctx context.Context, pollID string, id Identity) error {
	poll, err := m.store.GetPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
	}
	if err != nil {
		return err
	}

	requester, err := m.verifiedEmail(ctx, id)
	if err != nil {
		return err
	}
	if requester == "" {
		return fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
	}
	if requester != poll.CreatorEmail {
		return fmt.Errorf("%w: poll %s belongs to another user", ErrUnauthorized, pollID)
	}

	if err := m.store.DeletePoll(ctx, pollID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
		}
		return err
	}

	slog.Info("poll deleted", "poll_id", pollID)
	return nil
}

// DeleteUser removes a user with every poll they created and ballot they
// cast. Only the user themself, verified in this session, may do it.
func (m *Manager) DeleteUser(ctx context.Context, email string, id Identity) error {
	target, err := auth.NormalizeEmail(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	requester, err := m.verifiedEmail(ctx, id)
	if err != nil {
		return err
	}
	if requester == "" || requester != target {
		return fmt.Errorf("%w: cannot delete another user", ErrUnauthorized)
	}

	if err := m.store.DeleteUser(ctx, target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}

	slog.Info("user deleted")
	return nil
}

func (m *Manager) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	poll, err := m.store.GetPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, fmt.Errorf("%w: poll %s", ErrNotFound, pollID)
	}
	return poll, err
}

// Results tallies the current ballots of a poll
func (m *Manager) Results(ctx context.Context, pollID string) (models.Poll, tally.Result, error) {
	poll, err := m.GetPoll(ctx, pollID)
	if err != nil {
		return models.Poll{}, tally.Result{}, err
	}

	ballots, err := m.store.ListBallots(ctx, pollID)
	if err != nil {
		return models.Poll{}, tally.Result{}, err
	}

	return poll, tally.Tally(poll, ballots), nil
}

func (m *Manager) BallotCount(ctx context.Context, pollID string) (int, error) {
	if _, err := m.GetPoll(ctx, pollID); err != nil {
		return 0, err
	}
	return m.store.CountBallots(ctx, pollID)
}

// PollsByCreator lists the dashboard of the verified requester
func (m *Manager) PollsByCreator(ctx context.Context, id Identity) ([]models.PollSummary, error) {
	email, err := m.verifiedEmail(ctx, id)
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, fmt.Errorf("%w: verify your email to see your polls", ErrUnauthorized)
	}
	return m.store.ListPollsByCreator(ctx, email)
}
