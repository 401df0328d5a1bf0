// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"strconv"
	"strings"
)

// WinnersText describes the outcome in one sentence per group.
// Options ahead of a tie at the seat boundary are named as winners, then
// the tied options are reported for the seats left over.
func WinnersText(r Result) string {
	if len(r.Winners) == 0 {
		return "There are no winners."
	}
	if len(r.TiedAtCutoff) == 0 {
		return winnersSentence(r.Winners)
	}

	tied := make(map[string]bool, len(r.TiedAtCutoff))
	for _, label := range r.TiedAtCutoff {
		tied[label] = true
	}
	var outright []string
	for _, label := range r.Winners {
		if !tied[label] {
			outright = append(outright, label)
		}
	}
	if len(outright) == 0 {
		return joinLabels(r.TiedAtCutoff) + " are tied."
	}

	remaining := "the remaining seat"
	if n := len(r.Winners) - len(outright); n > 1 {
		remaining = "the remaining " + strconv.Itoa(n) + " seats"
	}
	return winnersSentence(outright) + " " + joinLabels(r.TiedAtCutoff) + " are tied for " + remaining + "."
}

func winnersSentence(labels []string) string {
	if len(labels) == 1 {
		return "The winner is " + labels[0] + "."
	}
	return "The winners are " + joinLabels(labels) + "."
}

// ConfirmationText is shown to a voter after their ballot is accepted
func ConfirmationText(approved []string) string {
	if len(approved) == 0 {
		return "You did not vote for any option."
	}
	return "You voted for: " + joinLabels(approved)
}

// joinLabels renders "A", "A and B" or "A, B, and C"
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	}
	return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
}
