// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/approval-vote/store"
	"github.com/danielhkuo/approval-vote/testutil"
)

type fixture struct {
	svc    *Service
	store  *store.Store
	mailer *testutil.MemoryMailer
	clock  time.Time
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	t.Cleanup(func() { conn.Close() })

	f := &fixture{
		store:  store.New(conn),
		mailer: &testutil.MemoryMailer{},
		clock:  time.Now().UTC(),
	}
	f.svc = NewService(f.store, f.mailer, opts)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) session(t *testing.T) string {
	t.Helper()
	sess, err := f.store.CreateSession(context.Background(), "session-"+t.Name())
	require.NoError(t, err)
	return sess.ID
}

func TestVerify_Success(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	require.Len(t, f.mailer.Sent(), 1)
	mail := f.mailer.Sent()[0]
	assert.Equal(t, "bob@example.com", mail.To)
	assert.Contains(t, mail.Body, "10 minutes")

	ok, err := f.svc.IsVerified(ctx, sid, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	code := f.mailer.LastCode(t, "bob@example.com")
	ok, err = f.svc.Verify(ctx, sid, "bob@example.com", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.IsVerified(ctx, sid, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.store.GetUser(ctx, "bob@example.com")
	assert.NoError(t, err, "verification creates the user")

	// The code is single use
	_, err = f.svc.Verify(ctx, sid, "bob@example.com", code)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestVerify_ScopedToSession(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	first, err := f.store.CreateSession(ctx, "first-session")
	require.NoError(t, err)
	second, err := f.store.CreateSession(ctx, "second-session")
	require.NoError(t, err)

	require.NoError(t, f.svc.RequestCode(ctx, first.ID, "bob@example.com"))
	ok, err := f.svc.Verify(ctx, first.ID, "bob@example.com", f.mailer.LastCode(t, "bob@example.com"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.IsVerified(ctx, second.ID, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "another session must verify on its own")

	ok, err = f.svc.IsVerified(ctx, first.ID, "carol@example.com")
	require.NoError(t, err)
	assert.False(t, ok, "verified for a different email")

	ok, err = f.svc.IsVerified(ctx, "no-such-session", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongCodeAndAttempts(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	code := f.mailer.LastCode(t, "bob@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 0; i < MaxAttempts; i++ {
		ok, err := f.svc.Verify(ctx, sid, "bob@example.com", wrong)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// Even the right code is refused once attempts run out
	ok, err := f.svc.Verify(ctx, sid, "bob@example.com", code)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	assert.False(t, ok)

	_, err = f.svc.Verify(ctx, sid, "bob@example.com", code)
	assert.ErrorIs(t, err, ErrNoCode)
}

func TestVerify_ConcurrentGuessesShareTheCap(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	code := f.mailer.LastCode(t, "bob@example.com")
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	const guesses = 40
	var evaluated, refused atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < guesses; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.svc.Verify(ctx, sid, "bob@example.com", wrong)
			switch {
			case err == nil:
				assert.False(t, ok)
				evaluated.Add(1)
			case errors.Is(err, ErrTooManyAttempts), errors.Is(err, ErrNoCode):
				refused.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(MaxAttempts), evaluated.Load())
	assert.Equal(t, int32(guesses-MaxAttempts), refused.Load())

	// The right code is no longer accepted
	ok, err := f.svc.Verify(ctx, sid, "bob@example.com", code)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t, Options{CodeTTL: time.Minute})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	code := f.mailer.LastCode(t, "bob@example.com")

	f.clock = f.clock.Add(2 * time.Minute)
	ok, err := f.svc.Verify(ctx, sid, "bob@example.com", code)
	assert.ErrorIs(t, err, ErrCodeExpired)
	assert.False(t, ok)
}

func TestRequestCode_RateLimited(t *testing.T) {
	f := newFixture(t, Options{ResendInterval: time.Minute, ResendBurst: 2})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	assert.ErrorIs(t, f.svc.RequestCode(ctx, sid, "bob@example.com"), ErrRateLimited)

	// Other addresses have their own budget
	assert.NoError(t, f.svc.RequestCode(ctx, sid, "carol@example.com"))

	f.clock = f.clock.Add(time.Minute)
	assert.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
}

func TestRequestCode_ResendReplacesCode(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	sid := f.session(t)

	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))
	require.NoError(t, f.svc.RequestCode(ctx, sid, "bob@example.com"))

	latest := f.mailer.LastCode(t, "bob@example.com")
	ok, err := f.svc.Verify(ctx, sid, "bob@example.com", latest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBuildMessage(t *testing.T) {
	date := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := string(buildMessage("noreply@example.com", "bob@example.com", "Hi", "line one\nline two", date))

	assert.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\nTo: bob@example.com\r\nSubject: Hi\r\n"))
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	assert.True(t, strings.HasSuffix(msg, "line one\r\nline two"))
}
