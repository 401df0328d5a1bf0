// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/approval-vote/models"
)

// EnsureUser records a verified email; existing users are left untouched
func (s *Store) EnsureUser(ctx context.Context, email string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return ensureUser(ctx, tx, email, time.Now().UTC())
	})
}

func ensureUser(ctx context.Context, tx *sql.Tx, email string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO app_user (email, created_at)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, email, now)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser looks up a user by email
func (s *Store) GetUser(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT email, created_at FROM app_user WHERE email = $1
	`, email).Scan(&u.Email, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

// DeleteUser removes a user with every poll they created, every ballot they
// cast, and their drafts, codes and sessions
func (s *Store) DeleteUser(ctx context.Context, email string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM app_user WHERE email = $1)
		`, email).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}
		if !exists {
			return ErrNotFound
		}

		pollIDs, err := queryStrings(ctx, tx, `SELECT id FROM poll WHERE creator_email = $1`, email)
		if err != nil {
			return fmt.Errorf("failed to query user polls: %w", err)
		}
		for _, pollID := range pollIDs {
			if err := deletePoll(ctx, tx, pollID); err != nil {
				return err
			}
		}

		statements := []struct {
			query string
			what  string
		}{
			{`DELETE FROM ballot_choice WHERE ballot_id IN (SELECT id FROM ballot WHERE voter_key = $1)`, "choices"},
			{`DELETE FROM ballot WHERE voter_key = $1`, "ballots"},
			{`DELETE FROM poll_draft WHERE email = $1 OR session_id IN (SELECT id FROM user_session WHERE email = $1)`, "drafts"},
			{`DELETE FROM verification_code WHERE email = $1 OR session_id IN (SELECT id FROM user_session WHERE email = $1)`, "codes"},
			{`DELETE FROM user_session WHERE email = $1`, "sessions"},
			{`DELETE FROM app_user WHERE email = $1`, "user"},
		}
		for _, st := range statements {
			if _, err := tx.ExecContext(ctx, st.query, email); err != nil {
				return fmt.Errorf("failed to delete %s: %w", st.what, err)
			}
		}
		return nil
	})
}
