// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrVerificationRequired = errors.New("verification required")
)

// PendingError is returned when poll creation waits on the creator's email
// code. It matches ErrVerificationRequired.
type PendingError struct {
	DraftToken string
	Email      string
}

func (e *PendingError) Error() string {
	return "verification required: a code was sent to " + e.Email
}

func (e *PendingError) Is(target error) bool {
	return target == ErrVerificationRequired
}
