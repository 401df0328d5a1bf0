// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Ballot submission outcomes
const (
	StatusVerificationRequired = "verification_required"
	StatusCreated              = "created"
	StatusUpdated              = "updated"
)

// Request types

type CreatePollRequest struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	CoverURL            string   `json:"cover_url,omitempty"`
	Seats               int      `json:"seats"`
	Options             []string `json:"options"`
	RequireVerification bool     `json:"require_verification"`
	Email               string   `json:"email"`
}

type ConfirmDraftRequest struct {
	Code string `json:"code"`
}

// Approved holds option labels, not option IDs
type SubmitBallotRequest struct {
	Approved []string `json:"approved"`
	Email    string   `json:"email,omitempty"`
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type DeleteUserRequest struct {
	Email string `json:"email"`
}

// Response types

type CreatePollResponse struct {
	PollID   string `json:"poll_id"`
	ShareURL string `json:"share_url"`
}

type PendingResponse struct {
	Status     string `json:"status"`
	DraftToken string `json:"draft_token,omitempty"`
	Message    string `json:"message"`
}

type SubmitBallotResponse struct {
	BallotID string `json:"ballot_id,omitempty"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

type SessionResponse struct {
	SessionToken string `json:"session_token"`
}

type SessionInfo struct {
	Email     string    `json:"email,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BallotCountResponse struct {
	PollID      string `json:"poll_id"`
	BallotCount int    `json:"ballot_count"`
}

type MyPollsResponse struct {
	Polls []PollSummary `json:"polls"`
}

// Domain types

type Poll struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	CoverURL            string    `json:"cover_url,omitempty"`
	Seats               int       `json:"seats"`
	RequireVerification bool      `json:"require_verification"`
	CreatorEmail        string    `json:"-"` // Never expose in JSON
	CreatedAt           time.Time `json:"created_at"`
	Options             []Option  `json:"options"`
}

// Labels returns option labels in position order
func (p Poll) Labels() []string {
	labels := make([]string, len(p.Options))
	for i, opt := range p.Options {
		labels[i] = opt.Label
	}
	return labels
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type Ballot struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	VoterKey    string    `json:"-"` // Never expose in JSON
	Verified    bool      `json:"verified"`
	Approved    []string  `json:"approved"`
	SubmittedAt time.Time `json:"submitted_at"`
	IPHash      *string   `json:"-"`
	UserAgent   *string   `json:"-"`
}

type PollSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Seats       int       `json:"seats"`
	BallotCount int       `json:"ballot_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is the explicit per-request identity context
type Session struct {
	ID        string
	Email     string
	Verified  bool
	CreatedAt time.Time
}

// Draft is a poll creation waiting on email verification
type Draft struct {
	Token     string
	SessionID string
	Email     string
	Request   CreatePollRequest
	CreatedAt time.Time
}

type User struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// VerificationCode holds the hash of an emailed one-time code
type VerificationCode struct {
	SessionID string
	Email     string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
