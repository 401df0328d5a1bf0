// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"sort"

	"github.com/danielhkuo/approval-vote/models"
)

// OptionResult is one row of the ranked results view
type OptionResult struct {
	Label    string `json:"label"`
	Position int    `json:"position"`
	Count    int    `json:"count"`
	Rank     int    `json:"rank"` // 1-indexed ranking
	Winner   bool   `json:"winner"`
	Behind   int    `json:"behind"` // approvals short of the last winner
}

// Result is derived from a poll's ballots and never stored
type Result struct {
	Seats       int            `json:"seats"`
	BallotCount int            `json:"ballot_count"`
	Options     []OptionResult `json:"options"`
	Winners     []string       `json:"winners"`

	// TiedAtCutoff lists options level with the last winner on both
	// sides of the winner boundary. Position decided who got the seat.
	TiedAtCutoff []string `json:"tied_at_cutoff"`

	// Coverage[k] is the number of ballots approving exactly k winners
	Coverage []int `json:"coverage"`
}

// Counts returns approvals keyed by option label
func (r Result) Counts() map[string]int {
	counts := make(map[string]int, len(r.Options))
	for _, opt := range r.Options {
		counts[opt.Label] = opt.Count
	}
	return counts
}

// Tally aggregates approval ballots for a poll.
// Ballots are expected to be deduplicated and validated at acceptance;
// labels that are not options of the poll are ignored.
func Tally(poll models.Poll, ballots []models.Ballot) Result {
	// Start every option at zero so unvoted options still show up
	stats := make([]OptionResult, len(poll.Options))
	index := make(map[string]int, len(poll.Options))
	for i, opt := range poll.Options {
		stats[i] = OptionResult{Label: opt.Label, Position: opt.Position}
		index[opt.Label] = i
	}

	for _, b := range ballots {
		for _, label := range b.Approved {
			if i, ok := index[label]; ok {
				stats[i].Count++
			}
		}
	}

	// Sort by approvals, then by original position
	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Position < b.Position
	})

	seats := poll.Seats
	if seats > len(stats) {
		seats = len(stats)
	}
	if seats < 0 {
		seats = 0
	}

	winners := make([]string, 0, seats)
	for i := range stats {
		stats[i].Rank = i + 1
		if i < seats {
			stats[i].Winner = true
			winners = append(winners, stats[i].Label)
		}
	}

	result := Result{
		Seats:        seats,
		BallotCount:  len(ballots),
		Options:      stats,
		Winners:      winners,
		TiedAtCutoff: []string{},
		Coverage:     make([]int, seats+1),
	}

	if seats == 0 {
		result.Coverage[0] = len(ballots)
		return result
	}

	cutoff := stats[seats-1].Count
	for i := range stats {
		if !stats[i].Winner {
			stats[i].Behind = cutoff - stats[i].Count
		}
	}
	if seats < len(stats) && stats[seats].Count == cutoff {
		for _, s := range stats {
			if s.Count == cutoff {
				result.TiedAtCutoff = append(result.TiedAtCutoff, s.Label)
			}
		}
	}

	isWinner := make(map[string]bool, seats)
	for _, w := range winners {
		isWinner[w] = true
	}
	for _, b := range ballots {
		k := 0
		for _, label := range b.Approved {
			if isWinner[label] {
				k++
			}
		}
		if k > seats {
			k = seats
		}
		result.Coverage[k]++
	}

	return result
}
