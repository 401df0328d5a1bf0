// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/approval-vote/models"
)

// SaveCode stores a code for (session, email), resetting attempts on resend
func (s *Store) SaveCode(ctx context.Context, c models.VerificationCode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_code (session_id, email, code_hash, attempts, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, email) DO UPDATE SET
			code_hash = excluded.code_hash,
			attempts = 0,
			expires_at = excluded.expires_at
	`, c.SessionID, c.Email, c.CodeHash, 0, c.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save code: %w", err)
	}
	return nil
}

func (s *Store) GetCode(ctx context.Context, sessionID, email string) (models.VerificationCode, error) {
	c := models.VerificationCode{SessionID: sessionID, Email: email}
	err := s.db.QueryRowContext(ctx, `
		SELECT code_hash, attempts, expires_at
		FROM verification_code
		WHERE session_id = $1 AND email = $2
	`, sessionID, email).Scan(&c.CodeHash, &c.Attempts, &c.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VerificationCode{}, ErrNotFound
	}
	if err != nil {
		return models.VerificationCode{}, fmt.Errorf("failed to query code: %w", err)
	}
	return c, nil
}

// ClaimCodeAttempt spends one of max attempts on the code for (session,
// email). It reports false when the attempts are used up or the code is gone.
func (s *Store) ClaimCodeAttempt(ctx context.Context, sessionID, email string, max int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE verification_code SET attempts = attempts + 1
		WHERE session_id = $1 AND email = $2 AND attempts < $3
	`, sessionID, email, max)
	if err != nil {
		return false, fmt.Errorf("failed to update code attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update code attempts: %w", err)
	}
	return n == 1, nil
}

func (s *Store) DeleteCode(ctx context.Context, sessionID, email string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM verification_code WHERE session_id = $1 AND email = $2
	`, sessionID, email)
	if err != nil {
		return fmt.Errorf("failed to delete code: %w", err)
	}
	return nil
}
