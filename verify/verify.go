// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/store"
)

// MaxAttempts is how many guesses a code allows
const MaxAttempts = 5

var (
	ErrRateLimited     = errors.New("too many code requests")
	ErrNoCode          = errors.New("no pending code")
	ErrCodeExpired     = errors.New("code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Store is the persistence the verifier needs
type Store interface {
	SaveCode(ctx context.Context, c models.VerificationCode) error
	GetCode(ctx context.Context, sessionID, email string) (models.VerificationCode, error)
	ClaimCodeAttempt(ctx context.Context, sessionID, email string, max int) (bool, error)
	DeleteCode(ctx context.Context, sessionID, email string) error
	GetSession(ctx context.Context, id string) (models.Session, error)
	MarkSessionVerified(ctx context.Context, id, email string) error
	EnsureUser(ctx context.Context, email string) error
}

// Mailer delivers verification codes
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Options tunes code lifetime and resend limits
type Options struct {
	CodeTTL        time.Duration
	ResendInterval time.Duration
	ResendBurst    int
}

func (o Options) withDefaults() Options {
	if o.CodeTTL <= 0 {
		o.CodeTTL = 10 * time.Minute
	}
	if o.ResendInterval <= 0 {
		o.ResendInterval = 30 * time.Second
	}
	if o.ResendBurst <= 0 {
		o.ResendBurst = 3
	}
	return o
}

type emailLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Service issues and checks one-time email codes.
// Verification is bound to a session: proving an email in one session says
// nothing about any other session.
type Service struct {
	store  Store
	mailer Mailer
	opts   Options
	now    func() time.Time

	mu        sync.Mutex
	limiters  map[string]*emailLimiter
	lastSweep time.Time
}

func NewService(s Store, m Mailer, opts Options) *Service {
	return &Service{
		store:    s,
		mailer:   m,
		opts:     opts.withDefaults(),
		now:      time.Now,
		limiters: make(map[string]*emailLimiter),
	}
}

// limiterFor returns the resend limiter for an email, dropping idle ones
func (s *Service) limiterFor(email string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > time.Minute {
		idle := s.opts.ResendInterval * time.Duration(s.opts.ResendBurst)
		for k, l := range s.limiters {
			if now.Sub(l.lastSeen) > idle {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	l, ok := s.limiters[email]
	if !ok {
		l = &emailLimiter{limiter: rate.NewLimiter(rate.Every(s.opts.ResendInterval), s.opts.ResendBurst)}
		s.limiters[email] = l
	}
	l.lastSeen = now
	return l.limiter
}

// RequestCode mails a fresh code for (session, email), replacing any pending one
func (s *Service) RequestCode(ctx context.Context, sessionID, email string) error {
	if !s.limiterFor(email).AllowN(s.now(), 1) {
		return ErrRateLimited
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return err
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return err
	}

	err = s.store.SaveCode(ctx, models.VerificationCode{
		SessionID: sessionID,
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: s.now().UTC().Add(s.opts.CodeTTL),
	})
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Your Approval Vote verification code is %s.\n\nIt expires in %d minutes. If you did not ask for it, ignore this email.\n",
		code, int(s.opts.CodeTTL.Minutes()),
	)
	if err := s.mailer.Send(ctx, email, "Your verification code", body); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}

	slog.Info("verification code sent", "session", shortID(sessionID))
	return nil
}

// Verify checks a code. A wrong code returns false with a nil error and
// counts as an attempt. On success the session becomes verified for email,
// the user is created and the code is consumed.
func (s *Service) Verify(ctx context.Context, sessionID, email, code string) (bool, error) {
	c, err := s.store.GetCode(ctx, sessionID, email)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNoCode
	}
	if err != nil {
		return false, err
	}

	if s.now().After(c.ExpiresAt) {
		if err := s.store.DeleteCode(ctx, sessionID, email); err != nil {
			return false, err
		}
		return false, ErrCodeExpired
	}

	// The attempt is spent before the hash is compared so concurrent
	// guesses cannot share one slot.
	claimed, err := s.store.ClaimCodeAttempt(ctx, sessionID, email, MaxAttempts)
	if err != nil {
		return false, err
	}
	if !claimed {
		if err := s.store.DeleteCode(ctx, sessionID, email); err != nil {
			return false, err
		}
		return false, ErrTooManyAttempts
	}

	if err := auth.CheckCode(c.CodeHash, code); err != nil {
		return false, nil
	}

	if err := s.store.MarkSessionVerified(ctx, sessionID, email); err != nil {
		return false, err
	}
	if err := s.store.EnsureUser(ctx, email); err != nil {
		return false, err
	}
	if err := s.store.DeleteCode(ctx, sessionID, email); err != nil {
		return false, err
	}

	slog.Info("session verified", "session", shortID(sessionID))
	return true, nil
}

// IsVerified reports whether the session has proven ownership of email
func (s *Service) IsVerified(ctx context.Context, sessionID, email string) (bool, error) {
	if sessionID == "" || email == "" {
		return false, nil
	}
	sess, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.Verified && sess.Email == email, nil
}

// shortID keeps session tokens out of logs
func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
