// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package verify proves email ownership with one-time codes.
//
// A code is scoped to a (session, email) pair and verifies only that
// session. Codes are stored as bcrypt hashes, expire after Options.CodeTTL
// and allow MaxAttempts guesses. Requests per email are throttled with a
// token bucket.
package verify
