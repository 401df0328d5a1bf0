// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken() error = %v", err)
	}

	// 24 bytes base64 = 32 chars
	if len(token) != 32 {
		t.Errorf("GenerateSessionToken() length = %d, want 32", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("GenerateSessionToken() is not URL-safe: %s", token)
	}
	if err := ValidateSessionToken(token); err != nil {
		t.Errorf("ValidateSessionToken() rejected a generated token: %v", err)
	}

	other, _ := GenerateSessionToken()
	if token == other {
		t.Error("GenerateSessionToken() produced duplicate tokens")
	}
}

func TestValidateSessionToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"too short", "abc"},
		{"bad alphabet", strings.Repeat("!", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSessionToken(tt.token); err != ErrInvalidToken {
				t.Errorf("ValidateSessionToken(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestAnonymousVoterKey(t *testing.T) {
	a := NewAnonymousVoterKey()
	b := NewAnonymousVoterKey()

	if a == b {
		t.Error("anonymous voter keys must never collide")
	}
	if !IsAnonymousVoterKey(a) {
		t.Errorf("IsAnonymousVoterKey(%q) = false", a)
	}
	if IsAnonymousVoterKey("alice@example.com") {
		t.Error("email voter key reported as anonymous")
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("GenerateCode() length = %d, want %d", len(code), CodeLength)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("GenerateCode() contains non-digit: %c", c)
			}
		}
	}
}

func TestHashAndCheckCode(t *testing.T) {
	hash, err := HashCode("123456")
	if err != nil {
		t.Fatalf("HashCode() error = %v", err)
	}
	if hash == "123456" {
		t.Fatal("HashCode() returned the plain code")
	}

	if err := CheckCode(hash, "123456"); err != nil {
		t.Errorf("CheckCode() with correct code = %v", err)
	}
	if err := CheckCode(hash, "654321"); err != ErrInvalidCode {
		t.Errorf("CheckCode() with wrong code = %v, want ErrInvalidCode", err)
	}
	if err := CheckCode(hash, "12345"); err != ErrInvalidCode {
		t.Errorf("CheckCode() with short code = %v, want ErrInvalidCode", err)
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("192.168.1.1", "salt")
	h2 := HashIP("192.168.1.1", "salt")
	h3 := HashIP("192.168.1.2", "salt")

	if h1 != h2 {
		t.Error("HashIP() is not deterministic")
	}
	if h1 == h3 {
		t.Error("HashIP() produced same hash for different IPs")
	}
	if len(h1) != 16 {
		t.Errorf("HashIP() length = %d, want 16", len(h1))
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "bob@example.com", "bob@example.com", false},
		{"mixed case", "Bob@Example.COM", "bob@example.com", false},
		{"surrounding space", "  bob@example.com ", "bob@example.com", false},
		{"empty", "", "", true},
		{"no domain", "bob", "", true},
		{"display name", "Bob <bob@example.com>", "", true},
		{"angle brackets", "<bob@example.com>", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
