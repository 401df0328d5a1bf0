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

func (s *Store) CreateSession(ctx context.Context, id string) (models.Session, error) {
	sess := models.Session{ID: id, CreatedAt: time.Now().UTC()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_session (id, verified, created_at)
		VALUES ($1, $2, $3)
	`, sess.ID, false, sess.CreatedAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	var email sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, verified, created_at FROM user_session WHERE id = $1
	`, id).Scan(&sess.ID, &email, &sess.Verified, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	sess.Email = email.String
	return sess, nil
}

// MarkSessionVerified binds a session to the email it proved ownership of
func (s *Store) MarkSessionVerified(ctx context.Context, id, email string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE user_session SET email = $1, verified = $2 WHERE id = $3
	`, email, true, id)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession logs a session out along with its pending codes and drafts
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM verification_code WHERE session_id = $1`,
			`DELETE FROM poll_draft WHERE session_id = $1`,
			`DELETE FROM user_session WHERE id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		return nil
	})
}
