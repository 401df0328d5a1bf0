// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/approval-vote/models"
)

// SaveDraft stores a poll form until its creator verifies their email.
// A session keeps at most one draft per email; saving again replaces it.
func (s *Store) SaveDraft(ctx context.Context, d *models.Draft) error {
	payload, err := json.Marshal(d.Request)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM poll_draft WHERE session_id = $1 AND email = $2
		`, d.SessionID, d.Email)
		if err != nil {
			return fmt.Errorf("failed to replace draft: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_draft (token, session_id, email, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, d.Token, d.SessionID, d.Email, string(payload), d.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert draft: %w", err)
		}
		return nil
	})
}

func (s *Store) GetDraft(ctx context.Context, token string) (models.Draft, error) {
	var d models.Draft
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT token, session_id, email, payload, created_at
		FROM poll_draft
		WHERE token = $1
	`, token).Scan(&d.Token, &d.SessionID, &d.Email, &payload, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Draft{}, ErrNotFound
	}
	if err != nil {
		return models.Draft{}, fmt.Errorf("failed to query draft: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &d.Request); err != nil {
		return models.Draft{}, fmt.Errorf("failed to decode draft: %w", err)
	}
	return d, nil
}

func (s *Store) DeleteDraft(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM poll_draft WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
