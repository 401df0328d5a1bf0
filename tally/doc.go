// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes approval voting results.

# Algorithm

Tally is a pure function of a poll and its ballots:

	result := tally.Tally(poll, ballots)

Every option starts at zero approvals. Each ballot adds one approval to
every option it lists. Options are ranked by approvals descending, with
ties broken by the option's original position (lower first). The first
poll.Seats options in that order are the winners.

With no ballots the winners are the first Seats options in position order.

# Result

  - Options: every option with Count, Rank, Winner and Behind
  - Winners: winning labels in rank order
  - TiedAtCutoff: labels level with the last winner across the boundary
  - Coverage: Coverage[k] ballots approved exactly k winners

# Text

	tally.WinnersText(result)        // "The winners are A and B."
	tally.ConfirmationText(approved) // "You voted for: A, B, and C"
*/
package tally
