// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/models"
)

// CreatePoll inserts a poll with its options and makes sure the creator exists as a user.
// Option IDs and positions are assigned here; poll.ID must be set by the caller.
func (s *Store) CreatePoll(ctx context.Context, poll *models.Poll) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertPoll(ctx, tx, poll)
	})
}

// FinalizeDraft consumes a pending draft and creates its poll in the same transaction
func (s *Store) FinalizeDraft(ctx context.Context, token string, poll *models.Poll) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM poll_draft WHERE token = $1`, token)
		if err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return insertPoll(ctx, tx, poll)
	})
}

func insertPoll(ctx context.Context, tx *sql.Tx, poll *models.Poll) error {
	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now().UTC()
	}

	if err := ensureUser(ctx, tx, poll.CreatorEmail, poll.CreatedAt); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO poll (id, title, description, cover_url, seats, require_verification, creator_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, poll.ID, poll.Title, poll.Description, poll.CoverURL, poll.Seats, poll.RequireVerification, poll.CreatorEmail, poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	for i := range poll.Options {
		opt := &poll.Options[i]
		optionID, err := auth.GenerateID(12)
		if err != nil {
			return err
		}
		opt.ID = optionID
		opt.PollID = poll.ID
		opt.Position = i

		_, err = tx.ExecContext(ctx, `
			INSERT INTO option (id, poll_id, label, position)
			VALUES ($1, $2, $3, $4)
		`, opt.ID, opt.PollID, opt.Label, opt.Position)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	return nil
}

// GetPoll loads a poll and its options in position order
func (s *Store) GetPoll(ctx context.Context, pollID string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, cover_url, seats, require_verification, creator_email, created_at
		FROM poll
		WHERE id = $1
	`, pollID).Scan(
		&poll.ID, &poll.Title, &poll.Description, &poll.CoverURL, &poll.Seats,
		&poll.RequireVerification, &poll.CreatorEmail, &poll.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query poll: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, poll_id, label, position
		FROM option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	poll.Options = []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.Position); err != nil {
			return models.Poll{}, fmt.Errorf("failed to scan option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.Poll{}, fmt.Errorf("failed to read options: %w", err)
	}

	return poll, nil
}

// DeletePoll removes a poll, its options, ballots and choices
func (s *Store) DeletePoll(ctx context.Context, pollID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deletePoll(ctx, tx, pollID)
	})
}

func deletePoll(ctx context.Context, tx *sql.Tx, pollID string) error {
	if err := deleteBallots(ctx, tx, pollID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM option WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPollsByCreator returns dashboard summaries, newest first
func (s *Store) ListPollsByCreator(ctx context.Context, email string) ([]models.PollSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.id,
			p.title,
			p.seats,
			p.created_at,
			(SELECT COUNT(*) FROM ballot b WHERE b.poll_id = p.id) AS ballot_count
		FROM poll p
		WHERE p.creator_email = $1
		ORDER BY p.created_at DESC, p.id
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	polls := []models.PollSummary{}
	for rows.Next() {
		var summary models.PollSummary
		if err := rows.Scan(&summary.ID, &summary.Title, &summary.Seats, &summary.CreatedAt, &summary.BallotCount); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, summary)
	}
	return polls, rows.Err()
}
