// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token, code and ID generation utilities.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded and sent by clients in the
X-Session-Token header. ValidateSessionToken rejects malformed tokens
before they reach the database.

# Voter Keys

A verified voter is keyed by email. Anonymous voters get a fresh key per
ballot so two anonymous ballots never collapse into one:

	key := auth.NewAnonymousVoterKey() // "anon-<uuid>"

# Verification Codes

One-time codes are six random digits. Only the bcrypt hash is stored:

	code, err := auth.GenerateCode()
	hash, err := auth.HashCode(code)
	err = auth.CheckCode(hash, submitted)

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

Draft tokens correlating a pending poll with its verification are UUIDs.

# IP Hashing

For privacy-preserving ballot metadata:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
