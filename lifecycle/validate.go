// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/approval-vote/models"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLabelLength       = 200
	MaxCoverURLLength    = 2048
)

// NormalizeLabel trims a label and puts it in Unicode NFC so that visually
// identical labels compare equal
func NormalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// validateCreate checks a poll form and returns it normalized
func validateCreate(req models.CreatePollRequest) (models.CreatePollRequest, error) {
	out := req
	out.Title = strings.TrimSpace(req.Title)
	out.Description = strings.TrimSpace(req.Description)
	out.CoverURL = strings.TrimSpace(req.CoverURL)

	if out.Title == "" {
		return out, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(out.Title) > MaxTitleLength {
		return out, fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLength)
	}
	if utf8.RuneCountInString(out.Description) > MaxDescriptionLength {
		return out, fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	}
	if out.CoverURL != "" {
		if err := validateCoverURL(out.CoverURL); err != nil {
			return out, err
		}
	}

	if len(req.Options) < 2 {
		return out, fmt.Errorf("%w: a poll needs at least 2 options", ErrValidation)
	}

	// Caser is stateful, one per call
	fold := cases.Fold()
	seen := make(map[string]string, len(req.Options))
	out.Options = make([]string, 0, len(req.Options))
	for i, raw := range req.Options {
		label := NormalizeLabel(raw)
		if label == "" {
			return out, fmt.Errorf("%w: option %d is blank", ErrValidation, i+1)
		}
		if utf8.RuneCountInString(label) > MaxLabelLength {
			return out, fmt.Errorf("%w: option %d must be at most %d characters", ErrValidation, i+1, MaxLabelLength)
		}
		key := fold.String(label)
		if prev, dup := seen[key]; dup {
			return out, fmt.Errorf("%w: option %q duplicates %q", ErrValidation, label, prev)
		}
		seen[key] = label
		out.Options = append(out.Options, label)
	}

	if req.Seats < 1 || req.Seats > len(out.Options) {
		return out, fmt.Errorf("%w: seats must be between 1 and %d", ErrValidation, len(out.Options))
	}

	return out, nil
}

// validateCoverURL accepts an absolute http or https link to the poll's image
func validateCoverURL(raw string) error {
	if len(raw) > MaxCoverURLLength {
		return fmt.Errorf("%w: cover_url must be at most %d characters", ErrValidation, MaxCoverURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: cover_url must be an http or https URL", ErrValidation)
	}
	return nil
}

// validateSelection normalizes and deduplicates approved labels, keeping
// them in the poll's option order
func validateSelection(poll models.Poll, approved []string) ([]string, error) {
	if len(approved) == 0 {
		return nil, fmt.Errorf("%w: approve at least one option", ErrValidation)
	}

	known := make(map[string]bool, len(poll.Options))
	for _, opt := range poll.Options {
		known[opt.Label] = true
	}

	picked := make(map[string]bool, len(approved))
	for _, raw := range approved {
		label := NormalizeLabel(raw)
		if label == "" {
			return nil, fmt.Errorf("%w: blank option in ballot", ErrValidation)
		}
		if !known[label] {
			return nil, fmt.Errorf("%w: unknown option %q", ErrValidation, label)
		}
		picked[label] = true
	}

	out := make([]string, 0, len(picked))
	for _, opt := range poll.Options {
		if picked[opt.Label] {
			out = append(out, opt.Label)
		}
	}
	return out, nil
}
