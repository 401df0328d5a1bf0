// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/db"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/store"
)

// SetupTestDB creates a fresh SQLite database with the full schema.
// Each test gets its own file so tests never share state.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := GetTestConfig()
	cfg.DatabaseURL = "file:" + filepath.Join(t.TempDir(), "test.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := db.Open(cfg)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseType:   cliparse.DatabaseSQLite,
		IPHashSalt:     "test-ip-salt",
		BaseURL:        "https://approvalvote.test",
		CodeTTL:        10 * time.Minute,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

// CreateTestPoll creates a poll owned by creator with the given options and returns it
func CreateTestPoll(t *testing.T, conn *sql.DB, creator string, seats int, requireVerification bool, labels ...string) models.Poll {
	t.Helper()

	pollID, _ := auth.GenerateID(16)
	poll := models.Poll{
		ID:                  pollID,
		Title:               "Test Poll",
		Description:         "A test poll",
		Seats:               seats,
		RequireVerification: requireVerification,
		CreatorEmail:        creator,
	}
	for _, label := range labels {
		poll.Options = append(poll.Options, models.Option{Label: label})
	}

	if err := store.New(conn).CreatePoll(context.Background(), &poll); err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return poll
}

// CreateTestSession creates a session, verified for email when email is not empty
func CreateTestSession(t *testing.T, conn *sql.DB, email string) models.Session {
	t.Helper()

	s := store.New(conn)
	token, _ := auth.GenerateSessionToken()
	sess, err := s.CreateSession(context.Background(), token)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	if email != "" {
		if err := s.MarkSessionVerified(context.Background(), token, email); err != nil {
			t.Fatalf("Failed to verify test session: %v", err)
		}
		if err := s.EnsureUser(context.Background(), email); err != nil {
			t.Fatalf("Failed to create test user: %v", err)
		}
		sess.Email = email
		sess.Verified = true
	}

	return sess
}

// SubmitTestBallot stores a ballot directly and returns it
func SubmitTestBallot(t *testing.T, conn *sql.DB, pollID, voterKey string, verified bool, approved ...string) models.Ballot {
	t.Helper()

	b := models.Ballot{
		PollID:   pollID,
		VoterKey: voterKey,
		Verified: verified,
		Approved: approved,
	}
	if _, err := store.New(conn).PutBallot(context.Background(), &b); err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}

	return b
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Mail is one message captured by MemoryMailer
type Mail struct {
	To      string
	Subject string
	Body    string
}

// MemoryMailer records outgoing mail instead of sending it
type MemoryMailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *MemoryMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of all captured mail
func (m *MemoryMailer) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Mail, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastCode extracts the verification code from the most recent mail to an address
func (m *MemoryMailer) LastCode(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To != to {
			continue
		}
		body := m.sent[i].Body
		for j := 0; j+auth.CodeLength <= len(body); j++ {
			if isDigits(body[j : j+auth.CodeLength]) {
				return body[j : j+auth.CodeLength]
			}
		}
	}
	t.Fatalf("no verification code sent to %s", to)
	return ""
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
