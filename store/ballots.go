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

// PutBallot stores a ballot and its approved options.
//
// Verified ballots are upserted on (poll_id, voter_key): a resubmission keeps
// the ballot ID and replaces the selection. Unverified ballots are always
// inserted; a repeated anonymous key returns ErrDuplicate. Concurrent
// upserts for the same key are last-writer-wins.
//
// The poll is re-checked inside the transaction so a ballot racing a poll
// deletion fails with ErrNotFound instead of leaving orphan rows.
// Reports whether an existing ballot was replaced.
func (s *Store) PutBallot(ctx context.Context, b *models.Ballot) (bool, error) {
	if b.SubmittedAt.IsZero() {
		b.SubmittedAt = time.Now().UTC()
	}

	var updated bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		optionIDs, err := optionIDsByLabel(ctx, tx, b.PollID)
		if err != nil {
			return err
		}

		for _, label := range b.Approved {
			if _, ok := optionIDs[label]; !ok {
				return fmt.Errorf("unknown option %q", label)
			}
		}

		if b.Verified {
			var existingID string
			err = tx.QueryRowContext(ctx, `
				SELECT id FROM ballot WHERE poll_id = $1 AND voter_key = $2
			`, b.PollID, b.VoterKey).Scan(&existingID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to query ballot: %w", err)
			}
			updated = err == nil

			newID, err := auth.GenerateID(16)
			if err != nil {
				return err
			}

			// Keeps the existing ID on conflict
			err = tx.QueryRowContext(ctx, `
				INSERT INTO ballot (id, poll_id, voter_key, verified, submitted_at, ip_hash, user_agent)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (poll_id, voter_key) DO UPDATE SET
					verified = excluded.verified,
					submitted_at = excluded.submitted_at,
					ip_hash = excluded.ip_hash,
					user_agent = excluded.user_agent
				RETURNING id
			`, newID, b.PollID, b.VoterKey, true, b.SubmittedAt, b.IPHash, b.UserAgent).Scan(&b.ID)
			if err != nil {
				return fmt.Errorf("failed to upsert ballot: %w", err)
			}
		} else {
			var exists bool
			err = tx.QueryRowContext(ctx, `
				SELECT EXISTS(SELECT 1 FROM ballot WHERE poll_id = $1 AND voter_key = $2)
			`, b.PollID, b.VoterKey).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to query ballot: %w", err)
			}
			if exists {
				return ErrDuplicate
			}

			b.ID, err = auth.GenerateID(16)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO ballot (id, poll_id, voter_key, verified, submitted_at, ip_hash, user_agent)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, b.ID, b.PollID, b.VoterKey, false, b.SubmittedAt, b.IPHash, b.UserAgent)
			if err != nil {
				return fmt.Errorf("failed to insert ballot: %w", err)
			}
		}

		// Replace the selection
		if _, err := tx.ExecContext(ctx, `DELETE FROM ballot_choice WHERE ballot_id = $1`, b.ID); err != nil {
			return fmt.Errorf("failed to delete old choices: %w", err)
		}
		for _, label := range b.Approved {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ballot_choice (ballot_id, option_id)
				VALUES ($1, $2)
			`, b.ID, optionIDs[label])
			if err != nil {
				return fmt.Errorf("failed to insert choice: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

// optionIDsByLabel maps labels to option IDs, failing with ErrNotFound if the poll is gone
func optionIDsByLabel(ctx context.Context, tx *sql.Tx, pollID string) (map[string]string, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, label FROM option WHERE poll_id = $1
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var id, label string
		if err := rows.Scan(&id, &label); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		ids[label] = id
	}
	return ids, rows.Err()
}

// GetBallot returns the ballot a voter key holds for a poll
func (s *Store) GetBallot(ctx context.Context, pollID, voterKey string) (models.Ballot, error) {
	b := models.Ballot{PollID: pollID, VoterKey: voterKey, Approved: []string{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, verified, submitted_at, ip_hash, user_agent
		FROM ballot
		WHERE poll_id = $1 AND voter_key = $2
	`, pollID, voterKey).Scan(&b.ID, &b.Verified, &b.SubmittedAt, &b.IPHash, &b.UserAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ballot{}, ErrNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.label
		FROM ballot_choice c
		JOIN option o ON o.id = c.option_id
		WHERE c.ballot_id = $1
		ORDER BY o.position
	`, b.ID)
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query choices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return models.Ballot{}, fmt.Errorf("failed to scan choice: %w", err)
		}
		b.Approved = append(b.Approved, label)
	}
	return b, rows.Err()
}

// ListBallots returns every ballot of a poll with approved labels in option order
func (s *Store) ListBallots(ctx context.Context, pollID string) ([]models.Ballot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.voter_key, b.verified, b.submitted_at, o.label
		FROM ballot b
		LEFT JOIN ballot_choice c ON c.ballot_id = b.id
		LEFT JOIN option o ON o.id = c.option_id
		WHERE b.poll_id = $1
		ORDER BY b.submitted_at, b.id, o.position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	ballots := []models.Ballot{}
	index := make(map[string]int)
	for rows.Next() {
		var b models.Ballot
		var label sql.NullString
		if err := rows.Scan(&b.ID, &b.VoterKey, &b.Verified, &b.SubmittedAt, &label); err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}

		i, seen := index[b.ID]
		if !seen {
			b.PollID = pollID
			b.Approved = []string{}
			ballots = append(ballots, b)
			i = len(ballots) - 1
			index[b.ID] = i
		}
		if label.Valid {
			ballots[i].Approved = append(ballots[i].Approved, label.String)
		}
	}
	return ballots, rows.Err()
}

// CountBallots returns the number of ballots cast in a poll
func (s *Store) CountBallots(ctx context.Context, pollID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot WHERE poll_id = $1
	`, pollID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	return count, nil
}

// DeleteBallots removes every ballot of a poll and their choices
func (s *Store) DeleteBallots(ctx context.Context, pollID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteBallots(ctx, tx, pollID)
	})
}

func deleteBallots(ctx context.Context, tx *sql.Tx, pollID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM ballot_choice
		WHERE ballot_id IN (SELECT id FROM ballot WHERE poll_id = $1)
	`, pollID)
	if err != nil {
		return fmt.Errorf("failed to delete choices: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ballot WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("failed to delete ballots: %w", err)
	}
	return nil
}
