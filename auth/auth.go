// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AnonymousPrefix marks voter keys that do not belong to a verified email
const AnonymousPrefix = "anon-"

// CodeLength is the number of digits in an emailed verification code
const CodeLength = 6

var (
	ErrInvalidCode  = errors.New("invalid verification code")
	ErrInvalidToken = errors.New("invalid token format")
	ErrInvalidEmail = errors.New("invalid email address")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSessionToken creates a random secure token for a browser session
func GenerateSessionToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// ValidateSessionToken checks the shape of a client supplied token
func ValidateSessionToken(token string) error {
	if len(token) != 32 {
		return ErrInvalidToken
	}
	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// NormalizeEmail validates an address and returns its lowercased bare form.
// Display names are rejected so "Bob <bob@x.com>" cannot become a voter key.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// NewAnonymousVoterKey returns a voter key that never collides with another ballot
func NewAnonymousVoterKey() string {
	return AnonymousPrefix + uuid.NewString()
}

// IsAnonymousVoterKey reports whether a voter key was minted for an anonymous ballot
func IsAnonymousVoterKey(key string) bool {
	return strings.HasPrefix(key, AnonymousPrefix)
}

// NewDraftToken returns the correlation token for a pending poll
func NewDraftToken() string {
	return uuid.NewString()
}

// GenerateCode creates a numeric one-time code
func GenerateCode() (string, error) {
	var sb strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// HashCode hashes a one-time code for storage
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(hash), nil
}

// CheckCode compares a submitted code against its stored hash
func CheckCode(hash, code string) error {
	if len(code) != CodeLength {
		return ErrInvalidCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrInvalidCode
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
