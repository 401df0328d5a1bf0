// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/approval-vote/models"
)

func makePoll(seats int, labels ...string) models.Poll {
	poll := models.Poll{ID: "poll-1", Title: "Lunch", Seats: seats}
	for i, label := range labels {
		poll.Options = append(poll.Options, models.Option{
			ID:       label,
			PollID:   poll.ID,
			Label:    label,
			Position: i,
		})
	}
	return poll
}

func ballot(voter string, approved ...string) models.Ballot {
	return models.Ballot{PollID: "poll-1", VoterKey: voter, Approved: approved}
}

func TestTally_Scenario(t *testing.T) {
	poll := makePoll(1, "A", "B", "C")
	ballots := []models.Ballot{
		ballot("voter1", "A"),
		ballot("voter2", "B"),
		ballot("voter3", "A", "C"),
	}

	result := Tally(poll, ballots)

	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 1}, result.Counts())
	assert.Equal(t, []string{"A"}, result.Winners)
	assert.Equal(t, 3, result.BallotCount)
	assert.Empty(t, result.TiedAtCutoff)

	// B and C tie on one approval; B comes first by position
	require.Len(t, result.Options, 3)
	assert.Equal(t, "A", result.Options[0].Label)
	assert.Equal(t, "B", result.Options[1].Label)
	assert.Equal(t, "C", result.Options[2].Label)
	assert.Equal(t, 1, result.Options[1].Behind)
	assert.Equal(t, 0, result.Options[0].Behind)
	assert.Equal(t, []int{1, 2}, result.Coverage)
}

func TestTally_NoBallots(t *testing.T) {
	poll := makePoll(2, "Pizza", "Tacos", "Sushi", "Curry")

	result := Tally(poll, nil)

	assert.Equal(t, []string{"Pizza", "Tacos"}, result.Winners)
	for i, opt := range result.Options {
		assert.Equal(t, 0, opt.Count)
		assert.Equal(t, i, opt.Position, "zero-vote options keep original order")
		assert.Equal(t, i+1, opt.Rank)
	}
	assert.Equal(t, []int{0, 0, 0}, result.Coverage)
	assert.Equal(t, []string{"Pizza", "Tacos", "Sushi", "Curry"}, result.TiedAtCutoff)
}

func TestTally_TieBreakByPosition(t *testing.T) {
	poll := makePoll(1, "A", "B", "C")
	ballots := []models.Ballot{
		ballot("v1", "C"),
		ballot("v2", "B"),
	}

	result := Tally(poll, ballots)

	assert.Equal(t, []string{"B"}, result.Winners)
	assert.Equal(t, []string{"B", "C"}, result.TiedAtCutoff)
	assert.Equal(t, "A", result.Options[2].Label)
	assert.Equal(t, 1, result.Options[2].Behind)
}

func TestTally_MultipleSeats(t *testing.T) {
	poll := makePoll(2, "A", "B", "C", "D")
	ballots := []models.Ballot{
		ballot("v1", "D", "C"),
		ballot("v2", "D"),
		ballot("v3", "C", "A"),
		ballot("v4", "D", "A", "C"),
		ballot("v5", "B"),
	}

	result := Tally(poll, ballots)

	assert.Equal(t, []string{"C", "D"}, result.Winners)
	assert.Equal(t, map[string]int{"A": 2, "B": 1, "C": 3, "D": 3}, result.Counts())
	// v5 approves no winner, v2 and v3 approve one, v1 and v4 approve both
	assert.Equal(t, []int{1, 2, 2}, result.Coverage)
	assert.Empty(t, result.TiedAtCutoff)
}

func TestTally_IgnoresUnknownLabels(t *testing.T) {
	poll := makePoll(1, "A", "B")
	result := Tally(poll, []models.Ballot{ballot("v1", "Z", "B")})

	assert.Equal(t, map[string]int{"A": 0, "B": 1}, result.Counts())
	assert.Equal(t, []string{"B"}, result.Winners)
}

func TestTally_Idempotent(t *testing.T) {
	poll := makePoll(2, "A", "B", "C")
	ballots := []models.Ballot{
		ballot("v1", "A", "B"),
		ballot("v2", "C"),
		ballot("v3", "B"),
	}

	assert.Equal(t, Tally(poll, ballots), Tally(poll, ballots))
}

func TestWinnersText(t *testing.T) {
	tests := []struct {
		name    string
		seats   int
		labels  []string
		ballots []models.Ballot
		want    string
	}{
		{
			name:    "single winner",
			seats:   1,
			labels:  []string{"Option A", "Option B"},
			ballots: []models.Ballot{ballot("v1", "Option A")},
			want:    "The winner is Option A.",
		},
		{
			name:    "two winners",
			seats:   2,
			labels:  []string{"Option A", "Option B", "Option C"},
			ballots: []models.Ballot{ballot("v1", "Option A", "Option B"), ballot("v2", "Option A", "Option B")},
			want:    "The winners are Option A and Option B.",
		},
		{
			name:    "three winners",
			seats:   3,
			labels:  []string{"A", "B", "C"},
			ballots: []models.Ballot{ballot("v1", "A", "B", "C")},
			want:    "The winners are A, B, and C.",
		},
		{
			name:    "tie for the only seat",
			seats:   1,
			labels:  []string{"Option A", "Option B"},
			ballots: []models.Ballot{ballot("v1", "Option A"), ballot("v2", "Option B")},
			want:    "Option A and Option B are tied.",
		},
		{
			name:   "outright winner then tie",
			seats:  2,
			labels: []string{"A", "B", "C"},
			ballots: []models.Ballot{
				ballot("v1", "A", "B"),
				ballot("v2", "A", "C"),
				ballot("v3", "A"),
			},
			want: "The winner is A. B and C are tied for the remaining seat.",
		},
		{
			name:   "tie for several seats",
			seats:  3,
			labels: []string{"A", "B", "C", "D"},
			ballots: []models.Ballot{
				ballot("v1", "A", "B"),
				ballot("v2", "A", "C"),
				ballot("v3", "A", "D"),
			},
			want: "The winner is A. B, C, and D are tied for the remaining 2 seats.",
		},
		{
			name:    "no winners",
			seats:   0,
			labels:  []string{"A"},
			ballots: nil,
			want:    "There are no winners.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tally(makePoll(tt.seats, tt.labels...), tt.ballots)
			assert.Equal(t, tt.want, WinnersText(result))
		})
	}
}

func TestConfirmationText(t *testing.T) {
	assert.Equal(t, "You voted for: Option A", ConfirmationText([]string{"Option A"}))
	assert.Equal(t, "You voted for: Option A, Option B, and Option C",
		ConfirmationText([]string{"Option A", "Option B", "Option C"}))
}
