// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/approval-vote/auth"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/models"
	"github.com/danielhkuo/approval-vote/testutil"
)

func TestCreateSession(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest("POST", "/sessions", nil)
	w := httptest.NewRecorder()
	env.sessions.Create(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SessionResponse
	testutil.AssertJSON(t, w, &resp)
	if len(resp.SessionToken) != 32 {
		t.Fatalf("Expected 32 character token, got '%s'", resp.SessionToken)
	}

	req = testutil.MakeRequest("GET", "/sessions/me", nil, withSession(resp.SessionToken))
	w = httptest.NewRecorder()
	env.sessions.Me(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var me models.SessionInfo
	testutil.AssertJSON(t, w, &me)
	if me.Verified || me.Email != "" {
		t.Errorf("Expected a fresh anonymous session, got %+v", me)
	}
}

func TestSessionMe(t *testing.T) {
	env := setupTestEnv(t)
	verified := env.session(t, "alice@example.com")
	unknown, _ := auth.GenerateSessionToken()

	tests := []struct {
		name           string
		session        string
		expectedStatus int
	}{
		{"no session", "", http.StatusUnauthorized},
		{"malformed token", "short", http.StatusUnauthorized},
		{"unknown session", unknown, http.StatusUnauthorized},
		{"verified session", verified, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/sessions/me", nil)
			if tt.session != "" {
				req.Header.Set(middleware.SessionHeader, tt.session)
			}
			w := httptest.NewRecorder()
			env.sessions.Me(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var me models.SessionInfo
				testutil.AssertJSON(t, w, &me)
				if !me.Verified || me.Email != "alice@example.com" {
					t.Errorf("Expected verified alice, got %+v", me)
				}
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	token := env.session(t, "alice@example.com")

	req := testutil.MakeRequest("DELETE", "/sessions", nil, withSession(token))
	w := httptest.NewRecorder()
	env.sessions.Logout(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	req = testutil.MakeRequest("GET", "/sessions/me", nil, withSession(token))
	w = httptest.NewRecorder()
	env.sessions.Me(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	t.Run("without session", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/sessions", nil)
		w := httptest.NewRecorder()
		env.sessions.Logout(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestRequestCode(t *testing.T) {
	env := setupTestEnv(t)
	token := env.session(t, "")
	unknown, _ := auth.GenerateSessionToken()

	tests := []struct {
		name           string
		session        string
		body           string
		expectedStatus int
	}{
		{"no session", "", `{"email":"bob@example.com"}`, http.StatusUnauthorized},
		{"invalid JSON", token, `not json`, http.StatusBadRequest},
		{"missing email", token, `{}`, http.StatusBadRequest},
		{"invalid email", token, `{"email":"Bob <bob@example.com>"}`, http.StatusBadRequest},
		{"unknown session", unknown, `{"email":"bob@example.com"}`, http.StatusUnauthorized},
		{"valid request", token, `{"email":"bob@example.com"}`, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/code", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			if tt.session != "" {
				req.Header.Set(middleware.SessionHeader, tt.session)
			}
			w := httptest.NewRecorder()
			env.sessions.RequestCode(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}

	if sent := env.mailer.Sent(); len(sent) != 1 || sent[0].To != "bob@example.com" {
		t.Errorf("Expected exactly one mail to bob, got %+v", sent)
	}
}

func TestRequestCodeRateLimited(t *testing.T) {
	env := setupTestEnv(t)
	token := env.session(t, "")

	var codes []int
	for i := 0; i < 4; i++ {
		req := testutil.MakeRequest("POST", "/auth/code", models.RequestCodeRequest{Email: "bob@example.com"}, withSession(token))
		w := httptest.NewRecorder()
		env.sessions.RequestCode(w, req)
		codes = append(codes, w.Code)
	}

	for i := 0; i < 3; i++ {
		if codes[i] != http.StatusAccepted {
			t.Errorf("Request %d: expected 202, got %d", i+1, codes[i])
		}
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Errorf("Expected fourth request to be limited, got %d", codes[3])
	}
}

func TestVerifyCode(t *testing.T) {
	env := setupTestEnv(t)
	token := env.session(t, "")

	verifyWith := func(email, code string) int {
		req := testutil.MakeRequest("POST", "/auth/verify",
			models.VerifyCodeRequest{Email: email, Code: code}, withSession(token))
		w := httptest.NewRecorder()
		env.sessions.Verify(w, req)
		return w.Code
	}

	if code := verifyWith("bob@example.com", "123456"); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 before any code was sent, got %d", code)
	}

	req := testutil.MakeRequest("POST", "/auth/code", models.RequestCodeRequest{Email: "bob@example.com"}, withSession(token))
	w := httptest.NewRecorder()
	env.sessions.RequestCode(w, req)
	testutil.AssertStatus(t, w, http.StatusAccepted)

	code := env.mailer.LastCode(t, "bob@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	if status := verifyWith("bob@example.com", wrong); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a wrong code, got %d", status)
	}
	if status := verifyWith("not an email", code); status != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid email, got %d", status)
	}
	if status := verifyWith("bob@example.com", code); status != http.StatusOK {
		t.Fatalf("Expected 200 for the mailed code, got %d", status)
	}

	// Codes are single use
	if status := verifyWith("bob@example.com", code); status != http.StatusUnauthorized {
		t.Errorf("Expected 401 when reusing a code, got %d", status)
	}

	var verified bool
	env.db.QueryRow("SELECT verified FROM user_session WHERE id = $1", token).Scan(&verified)
	if !verified {
		t.Error("Expected session to be marked verified")
	}
}
